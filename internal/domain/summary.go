package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Summary is a finished, sanitized answer ready for delivery.
type Summary struct {
	ID          int64     `db:"id"`
	VideoRef    *int64    `db:"video_ref"`
	VideoURL    string    `db:"video_url"`
	Title       string    `db:"title"`
	HTML        string    `db:"html"`
	ContentHash string    `db:"content_hash"`
	CreatedAt   time.Time `db:"created_at"`
}

// HashContent returns the hex sha256 of sanitized answer HTML.
func HashContent(html string) string {
	sum := sha256.Sum256([]byte(html))
	return hex.EncodeToString(sum[:])
}

// DeliveryReport is the outcome of handing a summary to one destination.
type DeliveryReport struct {
	Destination string
	Err         error
}

// OK reports whether the destination accepted the summary.
func (r DeliveryReport) OK() bool {
	return r.Err == nil
}

// RunStats holds statistics about one summarize run.
type RunStats struct {
	VideoURL   string
	Transcript bool
	SummaryID  int64
	Duplicate  bool
	Delivered  int
	Failed     int
	Skipped    int
	Duration   time.Duration
}
