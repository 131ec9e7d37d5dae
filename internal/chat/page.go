package chat

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"yt_digest/internal/dom"
)

const (
	AnswerSelector       = "div.markdown"
	PromptSelector       = "#prompt-textarea"
	SendButtonSelector   = `[data-testid="send-button"]`
	userMessageSelector  = `[data-message-author-role="user"]`
	copyButtonSelector   = `[data-testid="copy-turn-action-button"]`
	actionRowSelector    = "div.flex"
	actionRowClass       = "min-h-[46px]"
	fullWidthRowSelector = "div.mt-3.w-full"
)

var (
	titleField = regexp.MustCompile(`## Video Title: (.*)`)
	urlField   = regexp.MustCompile(`## URL: (\S+)`)
)

// Attributes that change between renders of identical content.
var volatileAttrs = []string{"data-start", "data-end", dom.HiddenAttr}

// ExtractTitle finds the video title in the prompt, falling back to the
// document title.
func ExtractTitle(snap *dom.Snapshot) string {
	if title, ok := promptField(snap, titleField); ok {
		return title
	}
	return snap.Title()
}

// ExtractVideoURL finds the video URL in the prompt.
func ExtractVideoURL(snap *dom.Snapshot) (string, bool) {
	return promptField(snap, urlField)
}

// promptField searches the composer, then sent user messages, then answers.
func promptField(snap *dom.Snapshot, re *regexp.Regexp) (string, bool) {
	for _, sel := range []string{PromptSelector, userMessageSelector, AnswerSelector} {
		for _, el := range snap.Find(sel) {
			if m := re.FindStringSubmatch(el.InnerText()); m != nil {
				if v := strings.TrimSpace(m[1]); v != "" {
					return v, true
				}
			}
		}
	}
	return "", false
}

// Sanitize strips per-render attributes so that identical answers produce
// identical HTML.
func Sanitize(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + fragment + "</body>"))
	if err != nil {
		return fragment
	}

	body := doc.Find("body")
	for _, attr := range volatileAttrs {
		body.Find("[" + attr + "]").RemoveAttr(attr)
	}

	out, err := body.Html()
	if err != nil {
		return fragment
	}
	return out
}
