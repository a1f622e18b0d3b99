package jira

import "strings"

// adfDocument wraps plain text in the minimal Atlassian Document Format
// shape the v3 API requires for rich-text fields. Each input line becomes
// one paragraph.
func adfDocument(text string) map[string]any {
	var paragraphs []map[string]any
	for _, line := range strings.Split(text, "\n") {
		paragraph := map[string]any{
			"type":    "paragraph",
			"content": []map[string]any{},
		}
		if line != "" {
			paragraph["content"] = []map[string]any{
				{"type": "text", "text": line},
			}
		}
		paragraphs = append(paragraphs, paragraph)
	}
	if len(paragraphs) == 0 {
		paragraphs = append(paragraphs, map[string]any{
			"type":    "paragraph",
			"content": []map[string]any{},
		})
	}

	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": paragraphs,
	}
}
