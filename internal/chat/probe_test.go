package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbes(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantProbe string
		wantOK    bool
	}{
		{
			name:      "copy button row after last answer",
			html:      chatPage(finished("a")),
			wantProbe: "copy_button",
			wantOK:    true,
		},
		{
			name:      "action row without copy button",
			html:      chatPage(`<div class="markdown">a</div><div class="flex min-h-[46px]"></div>`),
			wantProbe: "action_row",
			wantOK:    true,
		},
		{
			name:      "full width row",
			html:      chatPage(`<div class="markdown">a</div><div class="mt-3 w-full"></div>`),
			wantProbe: "full_width_row",
			wantOK:    true,
		},
		{
			name:   "still streaming",
			html:   chatPage(streaming("a")),
			wantOK: false,
		},
		{
			name:   "row belongs to an earlier answer",
			html:   chatPage(`<div class="markdown">a</div><div class="flex"><button data-testid="copy-turn-action-button"></button></div>`, streaming("b")),
			wantOK: false,
		},
		{
			name:   "action row before the answer",
			html:   chatPage(`<div class="flex min-h-[46px]"></div>`, streaming("b")),
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := parse(t, tt.html)
			last, ok := snap.Last(AnswerSelector)
			require.True(t, ok)

			probe, ok := matchProbe(DefaultProbes, snap, last)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantProbe, probe)
		})
	}
}
