package chat

import (
	"fmt"
	"time"

	"yt_digest/internal/dom"
)

// Phase is the state of one watched generation.
type Phase int

const (
	// Streaming: no completion signal, no timer pending.
	Streaming Phase = iota
	// PendingStable: completion signal present, quiet timer armed.
	PendingStable
	// Stable: the answer was accepted. Terminal.
	Stable
)

func (p Phase) String() string {
	switch p {
	case Streaming:
		return "streaming"
	case PendingStable:
		return "pending_stable"
	case Stable:
		return "stable"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// DefaultQuietPeriod is how long content must stay unchanged, with the
// completion signal present, before it is accepted.
const DefaultQuietPeriod = 500 * time.Millisecond

// Completion is a finished answer.
type Completion struct {
	Title    string
	VideoURL string
	// HTML is the sanitized answer; RawHTML is what the page rendered.
	HTML        string
	RawHTML     string
	Probe       string
	CompletedAt time.Time
}

// Session is the debounce state machine for one generation. It is fed
// mutation snapshots with the time they were observed and owns no timers:
// the caller arms a timer for the returned deadline and calls Fire when it
// expires. Sessions are not safe for concurrent use.
type Session struct {
	probes   []Probe
	quiet    time.Duration
	baseline int

	phase    Phase
	content  string
	seen     bool
	deadline time.Time
	probe    string
	latest   *dom.Snapshot
}

// NewSession ignores the first baseline answers, which were on the page
// before the watched generation started.
func NewSession(probes []Probe, quiet time.Duration, baseline int) *Session {
	if len(probes) == 0 {
		probes = DefaultProbes
	}
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Session{probes: probes, quiet: quiet, baseline: baseline}
}

func (s *Session) Phase() Phase {
	return s.phase
}

// Observe processes one mutation batch. It returns the deadline of the
// pending quiet timer, or false when no timer should be running.
func (s *Session) Observe(snap *dom.Snapshot, now time.Time) (time.Time, bool) {
	if s.phase == Stable {
		return time.Time{}, false
	}
	s.latest = snap

	answers := snap.Find(AnswerSelector)
	if len(answers) <= s.baseline {
		s.cancel()
		return time.Time{}, false
	}
	last := answers[len(answers)-1]

	// The structural signal gates the timer: content often pauses mid-stream.
	probe, ok := matchProbe(s.probes, snap, last)
	if !ok {
		s.cancel()
		return time.Time{}, false
	}
	s.probe = probe

	content := last.HTML()
	if !s.seen || content != s.content || s.phase == Streaming {
		s.content = content
		s.seen = true
		s.phase = PendingStable
		s.deadline = now.Add(s.quiet)
	}
	return s.deadline, true
}

// Deadline returns the pending quiet deadline.
func (s *Session) Deadline() (time.Time, bool) {
	return s.deadline, s.phase == PendingStable
}

// Fire accepts the answer if the quiet period has fully elapsed. It returns
// a completion at most once per session.
func (s *Session) Fire(now time.Time) (*Completion, bool) {
	if s.phase != PendingStable || now.Before(s.deadline) {
		return nil, false
	}
	s.phase = Stable

	c := &Completion{
		RawHTML:     s.content,
		HTML:        Sanitize(s.content),
		Probe:       s.probe,
		CompletedAt: now,
	}
	if s.latest != nil {
		c.Title = ExtractTitle(s.latest)
		c.VideoURL, _ = ExtractVideoURL(s.latest)
	}
	return c, true
}

func (s *Session) cancel() {
	s.phase = Streaming
	s.deadline = time.Time{}
}
