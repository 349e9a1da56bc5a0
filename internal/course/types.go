// Package course holds the structured lecture content and turns raw handout
// text into it with a language model.
package course

import (
	"os"
	"strings"
)

// Course is the fixed-schema lecture content. Field names follow course.json.
type Course struct {
	LectureTitle           FlexText         `json:"lecture_title"`
	LearningObjectives     FlexList         `json:"learning_objectives"`
	ClassIntro             FlexText         `json:"class_intro"`
	ExamAnalysis           FlexText         `json:"exam_analysis"`
	MindmapPages           PageList         `json:"mindmap_pages,omitempty"`
	KnowledgePoints        []KnowledgePoint `json:"knowledge_points"`
	TeachingProcess        FlexList         `json:"teaching_process,omitempty"`
	ConsolidationExercises FlexList         `json:"consolidation_exercises,omitempty"`
	QuizContent            FlexText         `json:"quiz_content"`
	Homework               FlexText         `json:"homework"`
	BgKeywords             FlexText         `json:"bg_keywords,omitempty"`
	ExtractedImages        []Image          `json:"extracted_images,omitempty"`
}

type KnowledgePoint struct {
	Title          FlexText `json:"title"`
	Content        FlexText `json:"content"`
	Discussion     FlexText `json:"discussion"`
	ExampleMother  FlexText `json:"example_mother"`
	ExampleVariant FlexText `json:"example_variant"`
	Method         FlexText `json:"method"`
}

// Image is an image lifted from the source PDF.
type Image struct {
	Page      int    `json:"page,omitempty"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	IsMindmap bool   `json:"is_mindmap"`
}

// MindMapPath returns the first extracted mind map that still exists on disk.
func (c *Course) MindMapPath() string {
	for _, img := range c.ExtractedImages {
		if !img.IsMindmap || img.Path == "" {
			continue
		}
		if st, err := os.Stat(img.Path); err == nil && !st.IsDir() {
			return img.Path
		}
	}
	return ""
}

// Objectives returns the non-blank learning objectives.
func (c *Course) Objectives() []string {
	var out []string
	for _, o := range c.LearningObjectives {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
