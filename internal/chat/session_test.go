package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type SessionSuite struct {
	suite.Suite
	t0      time.Time
	session *Session
}

func (s *SessionSuite) SetupTest() {
	s.t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.session = NewSession(nil, 500*time.Millisecond, 0)
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) at(ms int) time.Time {
	return s.t0.Add(time.Duration(ms) * time.Millisecond)
}

func (s *SessionSuite) observe(html string, ms int) (time.Time, bool) {
	return s.session.Observe(parse(s.T(), html), s.at(ms))
}

func (s *SessionSuite) TestNeverFiresWithoutSignal() {
	for i := 0; i < 10; i++ {
		_, pending := s.observe(chatPage(streaming(string(rune('a'+i)))), i*100)
		s.False(pending)

		_, fired := s.session.Fire(s.at(i*100 + 1000))
		s.False(fired)
	}
	s.Equal(Streaming, s.session.Phase())
}

func (s *SessionSuite) TestFiresOnceWithLastContent() {
	deadline, pending := s.observe(chatPage(finished("<p>final</p>")), 0)
	s.Require().True(pending)
	s.Equal(s.at(500), deadline)

	_, fired := s.session.Fire(s.at(499))
	s.False(fired)

	c, fired := s.session.Fire(s.at(500))
	s.Require().True(fired)
	s.Equal("<p>final</p>", c.HTML)
	s.Equal("copy_button", c.Probe)
	s.Equal(Stable, s.session.Phase())

	_, pending = s.observe(chatPage(finished("<p>changed later</p>")), 600)
	s.False(pending, "stable sessions ignore further mutations")
	_, fired = s.session.Fire(s.at(2000))
	s.False(fired)
}

func (s *SessionSuite) TestDebounceResetsOnChange() {
	_, pending := s.observe(chatPage(finished("<p>one</p>")), 0)
	s.Require().True(pending)

	deadline, pending := s.observe(chatPage(finished("<p>one two</p>")), 400)
	s.Require().True(pending)
	s.Equal(s.at(900), deadline)

	_, fired := s.session.Fire(s.at(500))
	s.False(fired, "first timer was superseded")
	_, fired = s.session.Fire(s.at(899))
	s.False(fired)

	c, fired := s.session.Fire(s.at(900))
	s.Require().True(fired)
	s.Equal("<p>one two</p>", c.HTML)
}

func (s *SessionSuite) TestUnchangedContentKeepsDeadline() {
	s.observe(chatPage(finished("<p>same</p>")), 0)

	deadline, pending := s.observe(chatPage(finished("<p>same</p>")), 300)
	s.True(pending)
	s.Equal(s.at(500), deadline)
}

func (s *SessionSuite) TestSignalLossCancelsTimer() {
	s.observe(chatPage(finished("<p>x</p>")), 0)

	_, pending := s.observe(chatPage(streaming("<p>x</p>")), 200)
	s.False(pending)
	_, fired := s.session.Fire(s.at(600))
	s.False(fired)

	deadline, pending := s.observe(chatPage(finished("<p>x</p>")), 700)
	s.True(pending, "returning signal re-arms even with unchanged content")
	s.Equal(s.at(1200), deadline)
}

func (s *SessionSuite) TestBaselineIgnoresEarlierAnswers() {
	s.session = NewSession(nil, 500*time.Millisecond, 1)

	_, pending := s.observe(chatPage(finished("<p>old</p>")), 0)
	s.False(pending)

	_, pending = s.observe(chatPage(finished("<p>old</p>"), streaming("<p>new</p>")), 100)
	s.False(pending)

	_, pending = s.observe(chatPage(finished("<p>old</p>"), finished("<p>new</p>")), 200)
	s.True(pending)

	c, fired := s.session.Fire(s.at(700))
	s.Require().True(fired)
	s.Equal("<p>new</p>", c.HTML)
}

func (s *SessionSuite) TestCompletionCarriesSanitizedHTMLAndHeader() {
	html := chatPage(
		userMessage("Summarize\n## Video Title: The Video\n## URL: https://www.youtube.com/watch?v=4sOLhFLfjuc"),
		finished(`<p data-start="0" data-end="4">done</p>`),
	)
	s.observe(html, 0)

	c, fired := s.session.Fire(s.at(500))
	s.Require().True(fired)
	s.Equal("<p>done</p>", c.HTML)
	s.Equal(`<p data-start="0" data-end="4">done</p>`, c.RawHTML)
	s.Equal("The Video", c.Title)
	s.Equal("https://www.youtube.com/watch?v=4sOLhFLfjuc", c.VideoURL)
}

func (s *SessionSuite) TestPhaseString() {
	s.Equal("streaming", Streaming.String())
	s.Equal("pending_stable", PendingStable.String())
	s.Equal("stable", Stable.String())
}
