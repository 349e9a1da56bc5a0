package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FlexText accepts whatever shape a model returns for a text field: a string,
// a list of strings, an object, a number or null. Everything becomes text.
type FlexText string

func (f FlexText) String() string { return string(f) }

// Or returns f, or def when f is blank.
func (f FlexText) Or(def string) string {
	if strings.TrimSpace(string(f)) == "" {
		return def
	}
	return string(f)
}

func (f FlexText) Empty() bool { return strings.TrimSpace(string(f)) == "" }

func (f *FlexText) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*f = FlexText(flatten(v))
	return nil
}

// FlexList accepts a list or a single value and always yields a list.
type FlexList []string

func (l *FlexList) UnmarshalJSON(b []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*l = nil
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				out = append(out, s)
			}
		}
		*l = out
	default:
		if s := flatten(x); s != "" {
			*l = splitLines(s)
		} else {
			*l = nil
		}
	}
	return nil
}

func splitLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func flatten(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, item := range x {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n")
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := flatten(x[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprint(x)
	}
}

// PageList is a list of page numbers; numeric strings such as "3" or "第3页"
// are accepted and anything else is dropped.
type PageList []int

func (p *PageList) UnmarshalJSON(b []byte) error {
	var l FlexList
	if err := l.UnmarshalJSON(b); err != nil {
		return err
	}
	out := make([]int, 0, len(l))
	for _, s := range l {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, s)
		if n, err := strconv.Atoi(digits); err == nil {
			out = append(out, n)
		}
	}
	*p = out
	return nil
}
