package jira

import (
	"testing"

	"github.com/m-mizutani/gt"
)

func TestADFDocument(t *testing.T) {
	t.Run("one paragraph per line", func(t *testing.T) {
		doc := adfDocument("first line\nsecond line")

		gt.Value(t, doc["type"]).Equal("doc")
		gt.Value(t, doc["version"]).Equal(1)

		paragraphs := gt.Cast[[]map[string]any](t, doc["content"])
		gt.Array(t, paragraphs).Length(2)

		content := gt.Cast[[]map[string]any](t, paragraphs[0]["content"])
		gt.Array(t, content).Length(1)
		gt.Value(t, content[0]["text"]).Equal("first line")
	})

	t.Run("blank lines become empty paragraphs", func(t *testing.T) {
		doc := adfDocument("a\n\nb")

		paragraphs := gt.Cast[[]map[string]any](t, doc["content"])
		gt.Array(t, paragraphs).Length(3)

		middle := gt.Cast[[]map[string]any](t, paragraphs[1]["content"])
		gt.Array(t, middle).Length(0)
	})

	t.Run("empty text still yields a valid document", func(t *testing.T) {
		doc := adfDocument("")

		paragraphs := gt.Cast[[]map[string]any](t, doc["content"])
		gt.Array(t, paragraphs).Length(1)
	})
}
