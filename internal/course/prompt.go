package course

import (
	"strings"
)

const schemaFields = `- lecture_title: 讲义标题（字符串）
- learning_objectives: 学习目标（字符串数组，每条以 识记/理解/运用 等层级词开头）
- class_intro: 课程导入（字符串）
- exam_analysis: 考情分析（字符串）
- mindmap_pages: 含思维导图的页码（整数数组）
- knowledge_points: 知识点数组，每项包含 title, content, discussion, example_mother, example_variant, method
- teaching_process: 教学过程（字符串数组）
- consolidation_exercises: 巩固练习（字符串数组）
- quiz_content: 出门测内容（字符串）
- homework: 课后作业（字符串）
- bg_keywords: 背景图关键词（英文字符串）`

// BuildPrompt asks the model for a single JSON object with the course schema.
// Page markers in rawText are kept so the model can report mindmap_pages.
func BuildPrompt(rawText string) string {
	var b strings.Builder
	b.WriteString("你是一名教学内容整理专家。下面是一份讲义 PDF 的原始文本，请把它整理成结构化 JSON。\n\n")
	b.WriteString("要求：\n")
	b.WriteString("1. 完整保留原文，例题和练习题一字不改，不要总结或省略。\n")
	b.WriteString("2. 单个知识点超过 800 字时拆分为多个知识点。\n")
	b.WriteString("3. 没有对应内容的字段输出空字符串或空数组。\n")
	b.WriteString("4. 字符串中的双引号写成 \\\"，换行写成 \\n，输出必须能被标准 JSON 解析器解析。\n\n")
	b.WriteString("字段：\n")
	b.WriteString(schemaFields)
	b.WriteString("\n\n原始文本：\n")
	b.WriteString(rawText)
	b.WriteString("\n\n只输出一个 JSON 对象，用 ```json 和 ``` 包裹。\n")
	return b.String()
}
