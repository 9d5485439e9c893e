package annotate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptHashIsStableAndShort(t *testing.T) {
	h := PromptHash()

	require.Len(t, h, 16)
	for _, c := range h {
		assert.Contains(t, "0123456789abcdef", string(c))
	}
	assert.Equal(t, h, PromptHash())
}

func TestBuildPromptFillsPlaceholders(t *testing.T) {
	prompt := BuildPrompt("abc123", "I have a question about spotting.")

	assert.Contains(t, prompt, `post_id: "abc123"`)
	assert.Contains(t, prompt, `post_text: "I have a question about spotting."`)
	assert.NotContains(t, prompt, "{{POST_ID}}")
	assert.NotContains(t, prompt, "{{POST_TEXT}}")
}

func TestBuildPromptTruncatesLongText(t *testing.T) {
	long := strings.Repeat("à", maxPostTextLength+500)
	prompt := BuildPrompt("abc123", long)

	kept := strings.Repeat("à", maxPostTextLength)
	assert.Contains(t, prompt, kept)
	assert.NotContains(t, prompt, kept+"à")
}

func TestTruncateIsRuneSafe(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 10))
	assert.Equal(t, "hél", Truncate("héllo", 3))

	// Cutting inside a multibyte sequence must never produce invalid UTF-8.
	cut := Truncate(strings.Repeat("né", 50), 5)
	assert.Equal(t, "nénén", cut)
	assert.True(t, utf8.ValidString(cut))
}

func TestCleanResponse(t *testing.T) {
	want := `{"post_id": "abc123"}`

	cases := map[string]string{
		"bare object":      want,
		"padded":           "  \n" + want + "\n ",
		"json fence":       "```json\n" + want + "\n```",
		"anonymous fence":  "```\n" + want + "\n```",
		"fence no newline": "```json" + "\n" + want + "```",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, CleanResponse(input))
		})
	}
}

func TestCleanResponseRejectsNonObjects(t *testing.T) {
	for name, input := range map[string]string{
		"prose":         "Sure! Here is the annotation you asked for.",
		"array":         `[{"post_id": "abc123"}]`,
		"empty":         "",
		"truncated":     `{"post_id": "abc`,
		"fenced  prose": "```json\nnot json\n```",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, CleanResponse(input))
		})
	}
}
