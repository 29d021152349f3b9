package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"CampusEat/backend/go/internal/models"
)

// SystemPrompt 是摘要生成调用使用的 system 指令。
const SystemPrompt = "You are a helpful campus AI reporter."

// RenderBatch 把一批报告渲染成 "[分类] 内容" 的逐行文本，作为提示词的原始素材。
// 调用方保证报告已按创建时间升序排列。
func RenderBatch(reports []models.CampusReport) string {
	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		lines = append(lines, fmt.Sprintf("[%s] %s", r.Category, r.Content))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt 把渲染好的报告文本组装成完整的 user 提示词。
// 输出契约是一个 JSON 数组，每项包含 category/summary/confidence/reportCount 四个字段。
func BuildPrompt(batch string) string {
	return fmt.Sprintf(`You are an AI reporter for a university campus.
Analyze the following real-time reports and generate a structured summary JSON.

Raw Reports:
%s

[Instructions]
1. Group reports by their topic (Traffic, Cafeteria, Event, Weather, Etc).
2. For each group, write a **detailed summary** that includes specific locations and the specific situation.
3. **Do not be vague.** (Bad: "Shuttle is busy", Good: "Long line at the station shuttle stop, consider taking a taxi").
4. Calculate 'confidence' (0-100%%) based on the number of similar reports and consensus. More reports = Higher confidence.
5. Count the number of relevant reports for each group ('reportCount').
6. Output must be a valid JSON Array. Korean language only.

[Output JSON Structure]
[
  {
    "category": "TRAFFIC" | "CAFETERIA" | "EVENT" | "WEATHER" | "ETC",
    "summary": "Specific detailed summary here...",
    "confidence": 85,
    "reportCount": 5
  }
]`, batch)
}

// StripCodeFences 去掉模型输出里偶发的 markdown 代码围栏。
// 模型经常把 JSON 包在 "```json ... ```" 里，解析前必须剥掉。
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// ParseBreakdown 把模型的原始文本输出解析成 breakdown 数组。
// 输出不是合法 JSON 数组时返回错误；confidence 与 reportCount 原样保留，不做校验。
func ParseBreakdown(raw string) ([]models.SummaryEntry, error) {
	cleaned := StripCodeFences(raw)
	var entries []models.SummaryEntry
	if err := json.Unmarshal([]byte(cleaned), &entries); err != nil {
		return nil, fmt.Errorf("模型输出不是合法的 JSON 数组: %w", err)
	}
	// 字面量 null 能通过 Unmarshal 但不是数组，必须显式拒绝，
	// 否则会落库一条 breakdown 为 null 的摘要。
	if entries == nil {
		return nil, fmt.Errorf("模型输出不是合法的 JSON 数组: 得到 null")
	}
	return entries, nil
}
