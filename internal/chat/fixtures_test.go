package chat

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"yt_digest/internal/dom"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func chatPage(parts ...string) string {
	return "<html><head><title>ChatGPT</title></head><body><main>" + strings.Join(parts, "") + "</main></body></html>"
}

// streaming is an answer still being generated.
func streaming(content string) string {
	return `<div class="turn"><div class="markdown prose">` + content + `</div></div>`
}

// finished is an answer followed by its action row.
func finished(content string) string {
	return `<div class="turn"><div class="markdown prose">` + content + `</div>` +
		`<div class="flex min-h-[46px] justify-start"><button data-testid="copy-turn-action-button">Copy</button></div></div>`
}

func userMessage(text string) string {
	return `<div data-message-author-role="user"><div class="whitespace-pre-wrap">` + text + `</div></div>`
}

func parse(t *testing.T, raw string) *dom.Snapshot {
	t.Helper()
	snap, err := dom.Parse(nil, raw, "ChatGPT")
	require.NoError(t, err)
	return snap
}

type fakeOpener struct {
	page   *dom.Page
	opened []string
}

func (o *fakeOpener) OpenPage(_ context.Context, url string) (*dom.Page, error) {
	o.opened = append(o.opened, url)
	return o.page, nil
}
