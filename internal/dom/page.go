// Package dom gives the extraction and detection code a browser-independent
// view of a page: immutable HTML snapshots queried with CSS selectors, and a
// Driver that performs the few actions the pipeline needs.
package dom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNotFound is returned when an expected DOM anchor is absent.
var ErrNotFound = errors.New("element not found")

// Driver is the live side of a page. Paths are CSS selectors produced by
// Element.Path and address exactly one node.
type Driver interface {
	HTML(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	Click(ctx context.Context, path string) error
	ScrollIntoView(ctx context.Context, path string) error
	ScrollToEnd(ctx context.Context, path string) error
	SetContent(ctx context.Context, path, html string) error
	// MutationCount is a counter bumped by the page on every DOM mutation.
	MutationCount(ctx context.Context) (int64, error)
}

// Opener opens a page in a browser.
type Opener interface {
	OpenPage(ctx context.Context, url string) (*Page, error)
}

type Page struct {
	driver Driver
}

func NewPage(driver Driver) *Page {
	return &Page{driver: driver}
}

func (p *Page) Driver() Driver {
	return p.driver
}

// Snapshot reads and parses the current document.
func (p *Page) Snapshot(ctx context.Context) (*Snapshot, error) {
	raw, err := p.driver.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	title, err := p.driver.Title(ctx)
	if err != nil {
		return nil, fmt.Errorf("read title: %w", err)
	}
	return Parse(p, raw, title)
}

func (p *Page) Title(ctx context.Context) (string, error) {
	return p.driver.Title(ctx)
}

func (p *Page) URL(ctx context.Context) (string, error) {
	return p.driver.URL(ctx)
}

// Close releases the underlying driver if it holds resources.
func (p *Page) Close() error {
	if c, ok := p.driver.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Parse builds a snapshot from raw HTML. page may be nil for read-only use.
func Parse(page *Page, raw, title string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return &Snapshot{page: page, doc: doc, title: title}, nil
}
