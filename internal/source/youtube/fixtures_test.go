package youtube

import (
	"context"
	"io"
	"log/slog"
	"time"

	"yt_digest/internal/dom"
)

func testTimings() Timings {
	return Timings{
		Settle:       time.Millisecond,
		ShowButton:   20 * time.Millisecond,
		Panel:        50 * time.Millisecond,
		Menu:         50 * time.Millisecond,
		Step:         5 * time.Millisecond,
		ScrollSettle: time.Millisecond,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func watchPage(body string) string {
	return "<html><head></head><body><ytd-app>" + body + "</ytd-app></body></html>"
}

const (
	description = `<yt-formatted-string id="desc">A long description that tells you more about the making of the video</yt-formatted-string>` +
		`<tp-yt-paper-button id="expand">...more</tp-yt-paper-button>`

	hiddenMore = `<tp-yt-paper-button id="hidden-expand" data-digest-hidden="">more</tp-yt-paper-button>`

	showTranscriptButton = `<ytd-button-renderer id="show"><button aria-label="Show transcript"><span>Show transcript</span></button></ytd-button-renderer>`

	actionsMenu = `<div id="actions"><ytd-menu-renderer><div id="button-shape"><button id="menu" aria-label="More actions"></button></div></ytd-menu-renderer></div>`

	menuItems = `<tp-yt-iron-dropdown><ytd-menu-service-item-renderer id="save">Save</ytd-menu-service-item-renderer>` +
		`<ytd-menu-service-item-renderer id="transcript-item"><yt-formatted-string>Show transcript</yt-formatted-string></ytd-menu-service-item-renderer></tp-yt-iron-dropdown>`

	panel = `<ytd-transcript-renderer><div id="segments-container">` +
		`<ytd-transcript-segment-renderer><div class="segment-timestamp">0:00</div><yt-formatted-string class="segment-text">Intro line</yt-formatted-string></ytd-transcript-segment-renderer>` +
		`<ytd-transcript-segment-renderer><div class="segment-timestamp">0:05</div><yt-formatted-string class="segment-text">first part<br>second part</yt-formatted-string></ytd-transcript-segment-renderer>` +
		`</div></ytd-transcript-renderer>`

	emptyPanel = `<ytd-transcript-renderer><div id="segments-container"></div></ytd-transcript-renderer>`
)

type fakeOpener struct {
	page   *dom.Page
	opened []string
}

func (o *fakeOpener) OpenPage(_ context.Context, url string) (*dom.Page, error) {
	o.opened = append(o.opened, url)
	return o.page, nil
}
