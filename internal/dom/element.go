package dom

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// HiddenAttr marks elements the live driver found without a layout box.
const HiddenAttr = "data-digest-hidden"

// Element is one node of a snapshot. Actions are forwarded to the page
// driver through the node's CSS path.
type Element struct {
	sel  *goquery.Selection
	snap *Snapshot
}

func (e Element) Valid() bool {
	return e.sel != nil && e.sel.Length() > 0
}

func (e Element) node() *html.Node {
	if !e.Valid() {
		return nil
	}
	return e.sel.Get(0)
}

func (e Element) Tag() string {
	return goquery.NodeName(e.sel)
}

func (e Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e Element) HasClass(class string) bool {
	return e.sel.HasClass(class)
}

// Is reports whether the element matches sel.
func (e Element) Is(sel string) bool {
	return e.sel.Is(sel)
}

// HTML returns the inner HTML.
func (e Element) HTML() string {
	out, err := e.sel.Html()
	if err != nil {
		return ""
	}
	return out
}

// InnerText renders text the way a browser lays it out: one line per block.
func (e Element) InnerText() string {
	return innerText(e.node())
}

// Visible reports whether the element and all its ancestors render.
func (e Element) Visible() bool {
	for n := e.node(); n != nil && n.Type == html.ElementNode; n = n.Parent {
		if hidden(n) {
			return false
		}
	}
	return e.Valid()
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden", HiddenAttr:
			return true
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") {
				return true
			}
		}
	}
	return false
}

// Find returns descendants matching sel.
func (e Element) Find(sel string) []Element {
	var out []Element
	e.sel.Find(sel).Each(func(_ int, found *goquery.Selection) {
		out = append(out, Element{sel: found, snap: e.snap})
	})
	return out
}

// Closest returns the nearest ancestor-or-self matching sel.
func (e Element) Closest(sel string) (Element, bool) {
	found := e.sel.Closest(sel)
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found, snap: e.snap}, true
}

// PrevSibling returns the previous element sibling.
func (e Element) PrevSibling() (Element, bool) {
	found := e.sel.Prev()
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found, snap: e.snap}, true
}

// Same reports whether both elements are the same node.
func (e Element) Same(other Element) bool {
	return e.Valid() && other.Valid() && e.node() == other.node()
}

// Follows reports whether e comes after other in document order.
// Descendants of other follow it.
func (e Element) Follows(other Element) bool {
	if !e.Valid() || !other.Valid() || e.snap != other.snap {
		return false
	}
	return e.snap.position(e.node()) > e.snap.position(other.node())
}

// Path returns a CSS selector addressing exactly this node.
func (e Element) Path() string {
	var parts []string
	for n := e.node(); n != nil && n.Type == html.ElementNode; n = n.Parent {
		if n.Parent == nil || n.Parent.Type == html.DocumentNode {
			parts = append(parts, n.Data)
			break
		}
		idx := 1
		for s := n.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode {
				idx++
			}
		}
		parts = append(parts, fmt.Sprintf("%s:nth-child(%d)", n.Data, idx))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

func (e Element) driver() (Driver, error) {
	if !e.Valid() {
		return nil, ErrNotFound
	}
	if e.snap == nil || e.snap.page == nil {
		return nil, fmt.Errorf("element %s is detached from a page", e.Tag())
	}
	return e.snap.page.driver, nil
}

func (e Element) Click(ctx context.Context) error {
	d, err := e.driver()
	if err != nil {
		return err
	}
	return d.Click(ctx, e.Path())
}

func (e Element) ScrollIntoView(ctx context.Context) error {
	d, err := e.driver()
	if err != nil {
		return err
	}
	return d.ScrollIntoView(ctx, e.Path())
}

// ScrollToEnd scrolls a scrollable container to its bottom.
func (e Element) ScrollToEnd(ctx context.Context) error {
	d, err := e.driver()
	if err != nil {
		return err
	}
	return d.ScrollToEnd(ctx, e.Path())
}

// SetContent replaces the element's inner HTML.
func (e Element) SetContent(ctx context.Context, content string) error {
	d, err := e.driver()
	if err != nil {
		return err
	}
	return d.SetContent(ctx, e.Path(), content)
}
