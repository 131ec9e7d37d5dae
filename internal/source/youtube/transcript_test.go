package youtube

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt_digest/internal/domain"
	"yt_digest/internal/dom"
	"yt_digest/internal/dom/domtest"
)

func segmentsHTML(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<ytd-transcript-segment-renderer><div class="segment-timestamp">%d:00</div>`+
			`<yt-formatted-string class="segment-text">line %d<br>continued</yt-formatted-string></ytd-transcript-segment-renderer>`, i, i)
	}
	return b.String()
}

func TestTranscriptJoinsSegmentsInOrder(t *testing.T) {
	const n = 5
	driver := domtest.New(watchPage(`<ytd-transcript-renderer>` + segmentsHTML(n) + `</ytd-transcript-renderer>`))
	s := NewScraper(testTimings(), discardLogger())

	got := s.Transcript(context.Background(), dom.NewPage(driver))

	lines := strings.Split(got, "\n")
	require.Len(t, lines, n)
	for i, line := range lines {
		assert.Equal(t, fmt.Sprintf("%d:00 line %d continued", i, i), line)
	}
}

func TestTranscriptScrollsBeforeReading(t *testing.T) {
	driver := domtest.New(watchPage(`<ytd-transcript-renderer>` + segmentsHTML(1) + `</ytd-transcript-renderer>`))
	driver.OnScroll(PanelSelector, func(d *domtest.Driver, _ string) {
		d.Mutate(watchPage(`<ytd-transcript-renderer>` + segmentsHTML(3) + `</ytd-transcript-renderer>`))
	})
	s := NewScraper(testTimings(), discardLogger())

	segments, err := s.Segments(context.Background(), dom.NewPage(driver))

	require.NoError(t, err)
	assert.Len(t, segments, 3)
	assert.Len(t, driver.Scrolls, 1)
}

func TestTranscriptUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"no segments", emptyPanel, ErrNoSegments},
		{"no panel", description, dom.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := dom.NewPage(domtest.New(watchPage(tt.body)))
			s := NewScraper(testTimings(), discardLogger())

			_, err := s.Segments(context.Background(), page)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, TranscriptUnavailable, s.Transcript(context.Background(), page))
		})
	}
}

func TestParseSegment(t *testing.T) {
	tests := []struct {
		text string
		want domain.TranscriptSegment
	}{
		{"1:02\nhello\n  world ", domain.TranscriptSegment{Timestamp: "1:02", Text: "hello world"}},
		{"\n\n1:02\n\n", domain.TranscriptSegment{Timestamp: "1:02"}},
		{"", domain.TranscriptSegment{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseSegment(tt.text))
	}

	assert.Equal(t, "1:02 hello world\n1:05", JoinSegments([]domain.TranscriptSegment{
		ParseSegment("1:02\nhello\nworld"),
		ParseSegment("1:05"),
	}))
}
