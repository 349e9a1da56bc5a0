package course

import (
	"path/filepath"
	"strings"
)

// CoverInfo is derived from the handout file name, which follows
// Subject_Grade_Semester_ClassType_Teacher.pdf, e.g.
// 高中语文_高一_2025寒假_小组课_张三.pdf.
type CoverInfo struct {
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	Semester    string `json:"semester"`
	ClassType   string `json:"class_type"`
	Teacher     string `json:"teacher_name"`
	MainSubject string `json:"main_subject"` // 语文
	SmallTitle  string `json:"small_title"`  // 小组课 · 寒假课堂
	SubTitle    string `json:"sub_title"`    // 2025寒假高中小组课
	GradeInfo   string `json:"grade_info"`   // 高中语文 · 高一
	TeacherLine string `json:"teacher"`      // 主讲人：张三老师
	BgKeywords  string `json:"bg_keywords"`
}

var coverDefaults = [5]string{"课程", "年级", "学期", "班型", "老师"}

// ParseCoverInfo never fails: missing parts take placeholder values.
func ParseCoverInfo(pdfPath string) CoverInfo {
	base := filepath.Base(pdfPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}

	var parts [5]string
	split := strings.Split(name, "_")
	for i := range parts {
		if i < len(split) && strings.TrimSpace(split[i]) != "" {
			parts[i] = strings.TrimSpace(split[i])
		} else {
			parts[i] = coverDefaults[i]
		}
	}

	ci := CoverInfo{
		Subject:   parts[0],
		Grade:     parts[1],
		Semester:  parts[2],
		ClassType: parts[3],
		Teacher:   parts[4],
	}
	ci.MainSubject = lastRunes(ci.Subject, 2)
	ci.SmallTitle = ci.ClassType + " · " + lastRunes(ci.Semester, 2) + "课堂"
	ci.SubTitle = ci.Semester + "高中" + ci.ClassType
	ci.GradeInfo = ci.Subject + " · " + ci.Grade
	ci.TeacherLine = "主讲人：" + ci.Teacher
	if !strings.Contains(ci.Teacher, "老师") {
		ci.TeacherLine += "老师"
	}
	ci.BgKeywords = "minimalist abstract white background"
	return ci
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
