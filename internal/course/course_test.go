package course

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeModel) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"other language tag", "```JSON\n{\"a\":1}\n```\n", `{"a":1}`},
		{"trailing prose", "{\"a\":1}\n以上是结果。", `{"a":1}`},
		{"plain", `{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{"no brace", "sorry", "sorry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}

func TestLoadToleratesLooseShapes(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "course.json"))
	require.NoError(t, err)

	assert.Equal(t, "社科文-名著拓展分析《红楼梦》《乡土中国》", c.LectureTitle.String())
	assert.Len(t, c.LearningObjectives, 3)
	assert.Equal(t, PageList{1, 2}, c.MindmapPages)
	require.Len(t, c.KnowledgePoints, 2)

	kp0 := c.KnowledgePoints[0]
	assert.Equal(t, "准确理解名著概念\n找到文章对应论点\n建立两者联系", kp0.Method.String())

	kp1 := c.KnowledgePoints[1]
	assert.Equal(t, "定位: 找到名著相关内容\n审题: 明确题目要求", kp1.Content.String())
	assert.True(t, kp1.Discussion.Empty())
	assert.Equal(t, "请思考", kp1.Discussion.Or("请思考"))
	assert.True(t, kp1.ExampleVariant.Empty())

	// the fixture points at a file that does not exist
	assert.Empty(t, c.MindMapPath())
}

func TestFlexListFromString(t *testing.T) {
	var c Course
	require.NoError(t, json.Unmarshal([]byte(`{"learning_objectives": "识记A\n\n理解B"}`), &c))
	assert.Equal(t, FlexList{"识记A", "理解B"}, c.LearningObjectives)
	assert.Equal(t, []string{"识记A", "理解B"}, c.Objectives())

	var c2 Course
	require.NoError(t, json.Unmarshal([]byte(`{"learning_objectives": null, "quiz_content": 3}`), &c2))
	assert.Empty(t, c2.LearningObjectives)
	assert.Equal(t, "3", c2.QuizContent.String())
}

func TestSaveRoundTripKeepsUnescapedText(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "extracted_images", "mindmap.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(img), 0o755))
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))

	in := &Course{
		LectureTitle:    "a < b & c",
		KnowledgePoints: []KnowledgePoint{{Title: "一"}},
		ExtractedImages: []Image{{Filename: "mindmap.png", Path: img, IsMindmap: true}},
	}
	path := filepath.Join(dir, "out", FileName)
	require.NoError(t, Save(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "a < b & c")
	assert.Contains(t, string(raw), "\n  \"lecture_title\"")

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, in.LectureTitle, out.LectureTitle)
	assert.Equal(t, img, out.MindMapPath())
}

func TestStructure(t *testing.T) {
	m := &fakeModel{reply: "```json\n{\"lecture_title\":\"函数\",\"knowledge_points\":[{\"title\":\"定义域\"}]}\n```\n希望有帮助"}
	s := &Structurer{Model: m, WorkDir: t.TempDir(), Log: zerolog.Nop()}

	c, err := s.Structure(context.Background(), "=== Page 1 ===\n函数的定义域")
	require.NoError(t, err)
	assert.Equal(t, "函数", c.LectureTitle.String())
	require.Len(t, c.KnowledgePoints, 1)
	assert.Contains(t, m.prompt, "函数的定义域")
	assert.Contains(t, m.prompt, "knowledge_points")
}

func TestStructureMalformedDumpsResponse(t *testing.T) {
	dir := t.TempDir()
	s := &Structurer{Model: &fakeModel{reply: "```json\n{\"lecture_title\": \"x\",}\n```"}, WorkDir: dir, Log: zerolog.Nop()}

	_, err := s.Structure(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedJSON))

	var me *MalformedError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, filepath.Join(dir, DebugFile), me.DumpPath)
	dump, err := os.ReadFile(me.DumpPath)
	require.NoError(t, err)
	assert.Equal(t, `{"lecture_title": "x",}`, string(dump))
}

func TestStructureErrors(t *testing.T) {
	s := &Structurer{Model: &fakeModel{err: errors.New("quota")}, Log: zerolog.Nop()}
	_, err := s.Structure(context.Background(), "text")
	assert.ErrorContains(t, err, "quota")

	_, err = s.Structure(context.Background(), "  ")
	assert.Error(t, err)

	s.Model = &fakeModel{reply: ""}
	_, err = s.Structure(context.Background(), "text")
	assert.ErrorIs(t, err, ErrMalformedJSON)
}

func TestParseCoverInfo(t *testing.T) {
	ci := ParseCoverInfo("uploads/高中语文_高一_2025寒假_小组课_张三.pdf")
	assert.Equal(t, "语文", ci.MainSubject)
	assert.Equal(t, "小组课 · 寒假课堂", ci.SmallTitle)
	assert.Equal(t, "2025寒假高中小组课", ci.SubTitle)
	assert.Equal(t, "高中语文 · 高一", ci.GradeInfo)
	assert.Equal(t, "主讲人：张三老师", ci.TeacherLine)

	ci = ParseCoverInfo("数学_高二_秋季_1v1_李老师.pdf")
	assert.Equal(t, "主讲人：李老师", ci.TeacherLine)
	assert.Equal(t, "数学", ci.MainSubject)

	ci = ParseCoverInfo("物理.pdf")
	assert.Equal(t, "年级", ci.Grade)
	assert.Equal(t, "班型 · 学期课堂", ci.SmallTitle)
	assert.True(t, strings.HasSuffix(ci.TeacherLine, "老师"))
}
