// Package domtest provides an in-memory dom.Driver for tests.
package domtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Handler reacts to an action on the element at path. It may mutate the
// document through the Driver.
type Handler func(d *Driver, path string)

// Driver keeps a document in memory. Actions are resolved against the
// current document with goquery, so paths produced by dom.Element work.
type Driver struct {
	mu        sync.Mutex
	html      string
	title     string
	url       string
	mutations int64

	onClick  map[string]Handler
	onScroll map[string]Handler

	Clicks   []string
	Scrolls  []string
	Contents map[string]string
	Closed   bool
}

func New(html string) *Driver {
	return &Driver{
		html:     html,
		title:    "",
		url:      "about:blank",
		onClick:  make(map[string]Handler),
		onScroll: make(map[string]Handler),
		Contents: make(map[string]string),
	}
}

func (d *Driver) WithTitle(title string) *Driver {
	d.title = title
	return d
}

func (d *Driver) WithURL(url string) *Driver {
	d.url = url
	return d
}

// OnClick registers a handler for clicks on elements matching sel.
func (d *Driver) OnClick(sel string, h Handler) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClick[sel] = h
	return d
}

// OnScroll registers a handler for ScrollToEnd on elements matching sel.
func (d *Driver) OnScroll(sel string, h Handler) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onScroll[sel] = h
	return d
}

// Mutate replaces the document and bumps the mutation counter.
func (d *Driver) Mutate(html string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.html = html
	d.mutations++
}

// Touch bumps the mutation counter without changing the document.
func (d *Driver) Touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mutations++
}

func (d *Driver) ClickCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Clicks)
}

func (d *Driver) HTML(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.html, nil
}

func (d *Driver) Title(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, nil
}

func (d *Driver) URL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) MutationCount(context.Context) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mutations, nil
}

func (d *Driver) Click(_ context.Context, path string) error {
	h, err := d.record(path, &d.Clicks, d.onClick)
	if err != nil {
		return err
	}
	if h != nil {
		h(d, path)
	}
	return nil
}

func (d *Driver) ScrollIntoView(_ context.Context, path string) error {
	_, err := d.record(path, nil, nil)
	return err
}

func (d *Driver) ScrollToEnd(_ context.Context, path string) error {
	h, err := d.record(path, &d.Scrolls, d.onScroll)
	if err != nil {
		return err
	}
	if h != nil {
		h(d, path)
	}
	return nil
}

func (d *Driver) SetContent(_ context.Context, path, html string) error {
	if _, err := d.record(path, nil, nil); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.html))
	if err != nil {
		return err
	}
	doc.Find(path).SetHtml(html)
	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return err
	}
	d.html = out
	d.Contents[path] = html
	d.mutations++
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// record checks path resolves, logs it and picks the first matching handler.
func (d *Driver) record(path string, log *[]string, handlers map[string]Handler) (Handler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.html))
	if err != nil {
		return nil, err
	}
	target := doc.Find(path)
	if target.Length() != 1 {
		return nil, fmt.Errorf("path %q matched %d nodes", path, target.Length())
	}
	if log != nil {
		*log = append(*log, path)
	}
	for sel, h := range handlers {
		if target.Is(sel) {
			return h, nil
		}
	}
	return nil, nil
}
