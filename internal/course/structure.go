package course

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/thywilljoshua/pdf-to-deck/internal/ai"
)

// ErrMalformedJSON is matched by errors.Is when the model reply is not a
// parseable course.
var ErrMalformedJSON = errors.New("model returned malformed course json")

const DebugFile = "debug_json.txt"

// MalformedError carries the location of the dumped reply.
type MalformedError struct {
	DumpPath string
	Err      error
}

func (e *MalformedError) Error() string {
	if e.DumpPath == "" {
		return fmt.Sprintf("%v: %v", ErrMalformedJSON, e.Err)
	}
	return fmt.Sprintf("%v: %v (response saved to %s)", ErrMalformedJSON, e.Err, e.DumpPath)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedJSON }
func (e *MalformedError) Unwrap() error        { return e.Err }

// Structurer turns handout text into a Course.
type Structurer struct {
	Model   ai.TextGenerator
	WorkDir string // debug_json.txt goes here
	Log     zerolog.Logger
}

func (s *Structurer) Structure(ctx context.Context, rawText string) (*Course, error) {
	if s.Model == nil {
		return nil, errors.New("no text model configured")
	}
	if strings.TrimSpace(rawText) == "" {
		return nil, errors.New("empty source text")
	}
	s.Log.Info().Int("chars", len([]rune(rawText))).Msg("structuring course content")
	reply, err := s.Model.GenerateText(ctx, BuildPrompt(rawText))
	if err != nil {
		return nil, fmt.Errorf("text model: %w", err)
	}
	if strings.TrimSpace(reply) == "" {
		return nil, &MalformedError{Err: errors.New("empty response")}
	}

	cleaned := CleanResponse(reply)
	s.Log.Debug().Int("raw", len(reply)).Int("cleaned", len(cleaned)).Msg("response cleaned")

	var c Course
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		// one more try on the first balanced object, for replies with prose before the json
		if alt := ai.FindFirstJSON(reply); alt == "" || json.Unmarshal([]byte(alt), &c) != nil {
			return nil, s.malformed(cleaned, err)
		}
	}
	s.Log.Info().Str("title", c.LectureTitle.String()).
		Int("knowledge_points", len(c.KnowledgePoints)).
		Int("objectives", len(c.LearningObjectives)).Msg("course structured")
	return &c, nil
}

func (s *Structurer) malformed(cleaned string, cause error) error {
	dir := s.WorkDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, DebugFile)
	if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
		s.Log.Error().Err(err).Msg("could not write debug dump")
		path = ""
	}
	return &MalformedError{DumpPath: path, Err: cause}
}

// CleanResponse strips the markdown code fence around a reply and anything
// after the last closing brace.
func CleanResponse(reply string) string {
	s := ai.StripCodeFences(reply)
	if i := strings.LastIndex(s, "}"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}
	return s
}
