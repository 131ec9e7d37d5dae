// Package chat drives the conversational AI page: it composes and injects
// the prompt, then watches the streaming answer until it is complete.
package chat

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"yt_digest/internal/domain"
)

// ComposeMessage renders the prompt followed by the video header and the
// transcript.
func ComposeMessage(prompt string, video domain.VideoRecord) string {
	return fmt.Sprintf("%s\n\n---\n## Video Title: %s\n## URL: %s\n## Transcript\n%s",
		prompt, video.Title, video.CanonicalURL, video.Transcript)
}

// ChatURL is the page that opens a new conversation with model preselected.
func ChatURL(origin, model string) string {
	return strings.TrimRight(origin, "/") + "/?model=" + url.QueryEscape(model)
}

// PromptHTML turns message into one paragraph per line.
func PromptHTML(message string) string {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(line)
	}
	return "<p>" + strings.Join(lines, "</p><p>") + "</p>"
}
