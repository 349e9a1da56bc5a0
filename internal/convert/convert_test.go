package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thywilljoshua/pdf-to-deck/internal/course"
	"github.com/thywilljoshua/pdf-to-deck/internal/extract"
	"github.com/thywilljoshua/pdf-to-deck/internal/pptx/pptxtest"
	"github.com/thywilljoshua/pdf-to-deck/internal/storage"
)

const handout = "testdata/Math_G1_2025Winter_Group_Li.pdf"

type cannedText struct {
	reply  string
	prompt string
}

func (c *cannedText) GenerateText(ctx context.Context, prompt string) (string, error) {
	c.prompt = prompt
	return c.reply, nil
}

type memDriver struct{ keys []string }

func (m *memDriver) Put(ctx context.Context, localPath, key, contentType string) error {
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	m.keys = append(m.keys, key)
	return nil
}

func (m *memDriver) GetURL(key string) (string, error) { return "https://cdn.example/" + key, nil }

const reply = "```json\n" + `{
  "lecture_title": "函数的概念",
  "learning_objectives": ["理解函数的定义"],
  "exam_analysis": "常考定义域",
  "knowledge_points": [{"title": "定义域", "content": "x 的取值范围", "method": "列不等式"}],
  "quiz_content": "完成测试",
  "homework": "习题1.2"
}` + "\n```"

func TestRunProducesCourseAndDeck(t *testing.T) {
	out := t.TempDir()
	model := &cannedText{reply: reply}
	drv := &memDriver{}
	res, err := Run(context.Background(), handout, Config{
		OutDir:   out,
		RunID:    "0123456789abcdef",
		Template: pptxtest.Write(t, pptxtest.Courseware()...),
		Text:     model,
		Uploader: storage.NewUploader(drv, "decks", zerolog.Nop()),
		Log:      zerolog.Nop(),
	})
	require.NoError(t, err)

	assert.Contains(t, model.prompt, "Functions and domains")
	assert.Equal(t, "函数的概念", res.Title)
	assert.Equal(t, 1, res.KnowledgePoints)
	assert.Equal(t, 1, res.Source.Pages)

	raw, err := os.ReadFile(filepath.Join(out, extract.RawTextFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "=== Page 1 ==="))

	saved, err := course.Load(res.CoursePath)
	require.NoError(t, err)
	assert.Equal(t, "常考定义域", saved.ExamAnalysis.String())

	require.NotNil(t, res.Deck)
	assert.Equal(t, filepath.Join(out, "函数的概念_01234567.pptx"), res.Deck.Path)
	assert.FileExists(t, res.Deck.Path)
	// cover .. exam (5), kp title/content/discussion/variant (4), closing (7)
	assert.Equal(t, 16, res.Deck.Slides)

	assert.Equal(t, []string{"decks/0123456789abcdef/函数的概念_01234567.pptx"}, drv.keys)
	assert.Equal(t, "https://cdn.example/decks/0123456789abcdef/函数的概念_01234567.pptx", res.URL)
}

func TestRunWithoutTemplateStopsAfterCourse(t *testing.T) {
	out := t.TempDir()
	res, err := Run(context.Background(), handout, Config{
		OutDir: out,
		Text:   &cannedText{reply: reply},
		Log:    zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Deck)
	assert.FileExists(t, filepath.Join(out, course.FileName))
}

func TestModelImagesAreReplacedByExtraction(t *testing.T) {
	invented := `{"lecture_title": "函数", "extracted_images": [{"filename": "map.png", "path": "/tmp/map.png", "is_mindmap": true}]}`
	out := t.TempDir()
	c, res, err := Structure(context.Background(), handout, Config{
		OutDir: out,
		Text:   &cannedText{reply: invented},
		Log:    zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Source.MindMap)
	assert.Empty(t, c.ExtractedImages)
	assert.Empty(t, c.MindMapPath())

	saved, err := course.Load(res.CoursePath)
	require.NoError(t, err)
	assert.Empty(t, saved.ExtractedImages)
}

func TestMalformedReplyIsDumped(t *testing.T) {
	out := t.TempDir()
	_, err := Run(context.Background(), handout, Config{
		OutDir: out,
		Text:   &cannedText{reply: `{"lecture_title": "x",`},
		Log:    zerolog.Nop(),
	})
	require.ErrorIs(t, err, course.ErrMalformedJSON)
	assert.FileExists(t, filepath.Join(out, course.DebugFile))
	assert.NoFileExists(t, filepath.Join(out, course.FileName))
}

func TestStructureNeedsModel(t *testing.T) {
	_, _, err := Structure(context.Background(), handout, Config{OutDir: t.TempDir(), Log: zerolog.Nop()})
	assert.EqualError(t, err, "no text model configured")

	_, _, err = Structure(context.Background(), "testdata/missing.pdf", Config{OutDir: t.TempDir(), Log: zerolog.Nop()})
	assert.Error(t, err)
}

func TestDeckFileName(t *testing.T) {
	assert.Equal(t, "函数的概念_01234567.pptx", deckFileName("函数的概念", "0123456789"))
	assert.Equal(t, "chapter-1-sets.pptx", deckFileName("Chapter 1: Sets", ""))
	assert.Equal(t, "courseware_ab.pptx", deckFileName("《》", "ab"))
	assert.Equal(t, "a-b", slugify("  A / b  "))
	assert.Len(t, []rune(strings.TrimSuffix(deckFileName(strings.Repeat("长", 60), ""), ".pptx")), 40)
}
