package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt_digest/internal/dom"
	"yt_digest/internal/dom/domtest"
	"yt_digest/internal/poll"
)

const (
	composer   = `<div id="prompt-textarea" contenteditable="true"><p></p></div>`
	sendButton = `<button data-testid="send-button">Send</button>`
	sentPrompt = "Summarize\n---\n## Video Title: The Video\n## URL: https://www.youtube.com/watch?v=4sOLhFLfjuc"
)

func testConfig() Config {
	return Config{
		AutoSubmit:      true,
		InjectTries:     40,
		InjectStep:      5 * time.Millisecond,
		ObserveInterval: 5 * time.Millisecond,
		Detector: DetectorConfig{
			QuietPeriod: 30 * time.Millisecond,
			MaxWait:     2 * time.Second,
		},
	}
}

// simulateAnswer streams an answer once the send button is clicked.
func simulateAnswer(d *domtest.Driver, _ string) {
	go func() {
		d.Mutate(chatPage(composer, userMessage(sentPrompt), streaming("<p>partial</p>")))
		time.Sleep(20 * time.Millisecond)
		d.Mutate(chatPage(composer, userMessage(sentPrompt), streaming("<p>partial answer</p>")))
		time.Sleep(20 * time.Millisecond)
		d.Mutate(chatPage(composer, userMessage(sentPrompt), finished(`<p data-start="0" data-end="19">partial answer done</p>`)))
	}()
}

func TestGenerate(t *testing.T) {
	driver := domtest.New(chatPage(composer, sendButton)).WithTitle("ChatGPT")
	driver.OnClick(SendButtonSelector, simulateAnswer)
	opener := &fakeOpener{page: dom.NewPage(driver)}
	g := NewGenerator(opener, testConfig(), discardLogger())

	c, err := g.Generate(context.Background(), sentPrompt)

	require.NoError(t, err)
	assert.Equal(t, []string{"https://chatgpt.com/?model=gpt-4o"}, opener.opened)
	assert.Equal(t, "<p>partial answer done</p>", c.HTML)
	assert.Equal(t, "The Video", c.Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=4sOLhFLfjuc", c.VideoURL)
	assert.Contains(t, driver.Contents, "html > body:nth-child(2) > main:nth-child(1) > div:nth-child(1)")
	assert.False(t, driver.Closed)
}

func TestGenerateWaitsForManualSubmit(t *testing.T) {
	driver := domtest.New(chatPage(composer, sendButton))
	cfg := testConfig()
	cfg.AutoSubmit = false
	cfg.CloseTab = true
	g := NewGenerator(&fakeOpener{page: dom.NewPage(driver)}, cfg, discardLogger())

	go func() {
		time.Sleep(30 * time.Millisecond)
		simulateAnswer(driver, "")
	}()

	c, err := g.Generate(context.Background(), sentPrompt)

	require.NoError(t, err)
	assert.Equal(t, "<p>partial answer done</p>", c.HTML)
	assert.Equal(t, 0, driver.ClickCount())
	assert.True(t, driver.Closed)
}

func TestInjectRetriesUntilComposerAppears(t *testing.T) {
	driver := domtest.New(chatPage())
	g := NewGenerator(nil, testConfig(), discardLogger())

	go func() {
		time.Sleep(20 * time.Millisecond)
		driver.Mutate(chatPage(composer))
	}()

	err := g.Inject(context.Background(), dom.NewPage(driver), "line one\nline <two>")

	require.NoError(t, err)
	for _, content := range driver.Contents {
		assert.Equal(t, "<p>line one</p><p>line &lt;two&gt;</p>", content)
	}
	assert.Len(t, driver.Contents, 1)
}

func TestInjectGivesUp(t *testing.T) {
	cfg := testConfig()
	cfg.InjectTries = 3
	g := NewGenerator(nil, cfg, discardLogger())

	err := g.Inject(context.Background(), dom.NewPage(domtest.New(chatPage())), "x")

	assert.ErrorIs(t, err, poll.ErrTimeout)
}

func TestSubmitWaitsForEnabledButton(t *testing.T) {
	driver := domtest.New(chatPage(composer, `<button data-testid="send-button" disabled>Send</button>`))
	g := NewGenerator(nil, testConfig(), discardLogger())

	go func() {
		time.Sleep(20 * time.Millisecond)
		driver.Mutate(chatPage(composer, sendButton))
	}()

	require.NoError(t, g.Submit(context.Background(), dom.NewPage(driver)))
	assert.Equal(t, 1, driver.ClickCount())
}
