package dom_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt_digest/internal/dom"
	"yt_digest/internal/dom/domtest"
)

const segmentsDoc = `<html><head><title>t</title></head><body>
<div id="panel">
  <ytd-transcript-segment-renderer>
    <div class="segment-timestamp">
      0:01
    </div>
    <yt-formatted-string class="segment-text">hello <b>there</b></yt-formatted-string>
    <yt-formatted-string class="segment-text">general</yt-formatted-string>
  </ytd-transcript-segment-renderer>
  <ytd-transcript-segment-renderer>
    <div class="segment-timestamp"></div>
    <span>no timestamp</span><br><span>second line</span>
    <script>var x = 1;</script>
  </ytd-transcript-segment-renderer>
</div>
<div class="markdown">first</div>
<div class="after"><button data-testid="copy">copy</button></div>
<div class="markdown">second</div>
<p hidden>gone</p>
<div style="display: none"><button id="inner">x</button></div>
<button id="marked" data-digest-hidden="1">more</button>
</body></html>`

func snapshot(t *testing.T, driver *domtest.Driver) *dom.Snapshot {
	t.Helper()
	snap, err := dom.NewPage(driver).Snapshot(context.Background())
	require.NoError(t, err)
	return snap
}

func TestInnerText(t *testing.T) {
	snap := snapshot(t, domtest.New(segmentsDoc))

	segs := snap.Find("ytd-transcript-segment-renderer")
	require.Len(t, segs, 2)

	assert.Equal(t, "0:01\nhello there\ngeneral", segs[0].InnerText())
	assert.Equal(t, "no timestamp\nsecond line", segs[1].InnerText())
}

func TestVisible(t *testing.T) {
	snap := snapshot(t, domtest.New(segmentsDoc))

	tests := []struct {
		sel  string
		want bool
	}{
		{"button[data-testid=copy]", true},
		{"p[hidden]", false},
		{"#inner", false},
		{"#marked", false},
	}
	for _, tt := range tests {
		t.Run(tt.sel, func(t *testing.T) {
			el, ok := snap.First(tt.sel)
			require.True(t, ok)
			assert.Equal(t, tt.want, el.Visible())
		})
	}

	assert.False(t, dom.Element{}.Visible())
}

func TestDocumentOrder(t *testing.T) {
	snap := snapshot(t, domtest.New(segmentsDoc))

	first, ok := snap.First("div.markdown")
	require.True(t, ok)
	last, ok := snap.Last("div.markdown")
	require.True(t, ok)
	after, ok := snap.First("div.after")
	require.True(t, ok)
	button, ok := snap.First("div.after button")
	require.True(t, ok)

	assert.True(t, after.Follows(first))
	assert.False(t, after.Follows(last))
	assert.True(t, button.Follows(after), "descendants follow their ancestor")
	assert.False(t, first.Follows(first))

	closest, ok := button.Closest("div")
	require.True(t, ok)
	assert.True(t, closest.Same(after))

	prev, ok := after.PrevSibling()
	require.True(t, ok)
	assert.True(t, prev.Same(first))

	assert.Equal(t, "second", last.HTML())
}

func TestPathAddressesNode(t *testing.T) {
	driver := domtest.New(segmentsDoc)
	snap := snapshot(t, driver)

	button, ok := snap.First("div.after button")
	require.True(t, ok)
	assert.Equal(t, "html > body:nth-child(2) > div:nth-child(3) > button:nth-child(1)", button.Path())

	require.NoError(t, button.Click(context.Background()))
	assert.Equal(t, []string{button.Path()}, driver.Clicks)
}

func TestRequire(t *testing.T) {
	snap := snapshot(t, domtest.New(segmentsDoc))

	_, err := snap.Require("#missing")
	assert.ErrorIs(t, err, dom.ErrNotFound)

	el, err := snap.Require("#panel")
	require.NoError(t, err)
	assert.Equal(t, "div", el.Tag())
}

func TestDetachedElementActions(t *testing.T) {
	snap, err := dom.Parse(nil, "<div id=a></div>", "")
	require.NoError(t, err)

	el, ok := snap.First("#a")
	require.True(t, ok)
	assert.Error(t, el.Click(context.Background()))
	assert.ErrorIs(t, dom.Element{}.Click(context.Background()), dom.ErrNotFound)
}

func TestSetContent(t *testing.T) {
	driver := domtest.New(`<html><body><div id="prompt-textarea"></div></body></html>`)
	snap := snapshot(t, driver)

	el, ok := snap.First("#prompt-textarea")
	require.True(t, ok)
	require.NoError(t, el.SetContent(context.Background(), "<p>a</p><p>b</p>"))

	snap = snapshot(t, driver)
	el, ok = snap.First("#prompt-textarea")
	require.True(t, ok)
	assert.Equal(t, "a\nb", el.InnerText())
}

func TestInnerTextPreformatted(t *testing.T) {
	snap := snapshot(t, domtest.New(`<html><body>`+
		`<div id="msg" class="whitespace-pre-wrap">Summarize
---
## Video Title: x</div>`+
		`<div id="flow">one
two</div></body></html>`))

	msg, ok := snap.First("#msg")
	require.True(t, ok)
	assert.Equal(t, "Summarize\n---\n## Video Title: x", msg.InnerText())

	flow, ok := snap.First("#flow")
	require.True(t, ok)
	assert.Equal(t, "one two", flow.InnerText())
}

func TestInnerTextPreformattedRoot(t *testing.T) {
	snap := snapshot(t, domtest.New(`<html><body>`+
		`<pre id="pre">a
b</pre>`+
		`<div id="wrapped"><pre>a
b</pre></div>`+
		`<div id="styled" style="white-space: pre-line">c
d</div></body></html>`))

	for _, sel := range []string{"#pre", "#wrapped"} {
		el, ok := snap.First(sel)
		require.True(t, ok, sel)
		assert.Equal(t, "a\nb", el.InnerText(), sel)
	}

	styled, ok := snap.First("#styled")
	require.True(t, ok)
	assert.Equal(t, "c\nd", styled.InnerText())
}
