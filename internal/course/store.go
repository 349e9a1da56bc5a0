package course

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const FileName = "course.json"

func Load(path string) (*Course, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Course
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

// Save writes indented UTF-8 JSON without escaping <, > and &, which appear
// in maths and grammar handouts.
func Save(path string, c *Course) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
