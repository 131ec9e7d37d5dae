package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "from composer",
			html: chatPage(`<div id="prompt-textarea"><p>Summarize</p><p>## Video Title: Composer Title </p></div>`, userMessage("## Video Title: Other")),
			want: "Composer Title",
		},
		{
			name: "from sent message",
			html: chatPage(`<div id="prompt-textarea"><p></p></div>`, userMessage("Summarize\n---\n## Video Title: Sent Title\n## URL: x")),
			want: "Sent Title",
		},
		{
			name: "from answer",
			html: chatPage(finished("<h2>## Video Title: Answer Title</h2>")),
			want: "Answer Title",
		},
		{
			name: "document title",
			html: chatPage(finished("<p>no header</p>")),
			want: "ChatGPT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(parse(t, tt.html)))
		})
	}
}

func TestExtractVideoURL(t *testing.T) {
	snap := parse(t, chatPage(userMessage("## Video Title: T\n## URL: https://www.youtube.com/watch?v=4sOLhFLfjuc\n## Transcript")))

	got, ok := ExtractVideoURL(snap)
	assert.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=4sOLhFLfjuc", got)

	_, ok = ExtractVideoURL(parse(t, chatPage(finished("x"))))
	assert.False(t, ok)
}

func TestSanitize(t *testing.T) {
	a := `<h2 data-start="0" data-end="12">Summary</h2><p data-start="13" data-end="40">Text <strong data-start="20" data-end="30">bold</strong></p><button data-digest-hidden="">Copy</button>`
	b := `<h2 data-start="5" data-end="17">Summary</h2><p data-start="18" data-end="45">Text <strong data-start="25" data-end="35">bold</strong></p><button>Copy</button>`

	got := Sanitize(a)

	assert.Equal(t, `<h2>Summary</h2><p>Text <strong>bold</strong></p><button>Copy</button>`, got)
	assert.Equal(t, got, Sanitize(b), "renders of the same answer sanitize identically")
	assert.Equal(t, got, Sanitize(got))
}

func TestSanitizeKeepsOtherAttributes(t *testing.T) {
	got := Sanitize(`<a href="https://example.com" data-start="1" data-state="x">link</a>`)

	assert.Equal(t, `<a href="https://example.com" data-state="x">link</a>`, got)
}
