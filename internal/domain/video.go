package domain

import (
	"strings"
	"time"
)

// VideoRecord is one captured video. CanonicalURL is always the
// watch?v= form of the video id.
type VideoRecord struct {
	ID           int64     `db:"id" json:"-"`
	VideoID      string    `db:"video_id" json:"video_id"`
	Title        string    `db:"title" json:"title"`
	CanonicalURL string    `db:"canonical_url" json:"url"`
	Transcript   string    `db:"transcript" json:"transcript"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
	UpdatedAt    time.Time `db:"updated_at" json:"-"`
}

// TranscriptSegment is one line of the transcript panel.
type TranscriptSegment struct {
	Timestamp string
	Text      string
}

// Line renders the segment as "{timestamp} {text}".
func (s TranscriptSegment) Line() string {
	return strings.TrimSpace(s.Timestamp + " " + s.Text)
}
