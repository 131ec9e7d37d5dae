package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"yt_digest/internal/dom"
	"yt_digest/internal/poll"
)

// RevealState tracks how far the transcript UI has been unlocked. It only
// moves forward.
type RevealState int

const (
	Collapsed RevealState = iota
	DescriptionExpanded
	PanelOpen
)

func (s RevealState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case DescriptionExpanded:
		return "description_expanded"
	case PanelOpen:
		return "panel_open"
	default:
		return fmt.Sprintf("reveal_state(%d)", int(s))
	}
}

const (
	PanelSelector   = "ytd-transcript-renderer"
	SegmentSelector = "ytd-transcript-segment-renderer"

	expandCandidates         = "tp-yt-paper-button, yt-formatted-string, ytd-button-renderer"
	showTranscriptCandidates = "button, ytd-button-renderer"
	actionsMenuSelector      = "#actions ytd-menu-renderer #button-shape button, #actions ytd-menu-renderer tp-yt-paper-icon-button"
	menuItemSelector         = "ytd-menu-service-item-renderer"

	// Longer texts are description bodies that happen to contain "more".
	maxAffordanceLabel = 40
)

var (
	morePattern           = regexp.MustCompile(`(?i)\bmore\b`)
	showTranscriptPattern = regexp.MustCompile(`(?i)show\s+transcript`)
	transcriptPattern     = regexp.MustCompile(`(?i)transcript`)
)

// Timings bound every wait of the reveal sequence and the scrape.
type Timings struct {
	Settle       time.Duration `yaml:"settle"`
	ShowButton   time.Duration `yaml:"show_button"`
	Panel        time.Duration `yaml:"panel"`
	Menu         time.Duration `yaml:"menu"`
	Step         time.Duration `yaml:"step"`
	ScrollSettle time.Duration `yaml:"scroll_settle"`
}

func DefaultTimings() Timings {
	return Timings{
		Settle:       300 * time.Millisecond,
		ShowButton:   2500 * time.Millisecond,
		Panel:        6 * time.Second,
		Menu:         6 * time.Second,
		Step:         poll.DefaultStep,
		ScrollSettle: 400 * time.Millisecond,
	}
}

// Revealer opens the transcript panel, trying the dedicated button first
// and the overflow menu second.
type Revealer struct {
	timings Timings
	logger  *slog.Logger
}

func NewRevealer(timings Timings, logger *slog.Logger) *Revealer {
	return &Revealer{timings: timings, logger: logger}
}

// Reveal returns the furthest state reached. The error describes the step
// that failed.
func (r *Revealer) Reveal(ctx context.Context, page *dom.Page) (RevealState, error) {
	state := Collapsed

	if err := r.expandDescription(ctx, page); err != nil {
		return state, fmt.Errorf("expand description: %w", err)
	}
	state = DescriptionExpanded

	if err := r.openPanel(ctx, page); err != nil {
		return state, err
	}
	return PanelOpen, nil
}

func (r *Revealer) expandDescription(ctx context.Context, page *dom.Page) error {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}

	for _, el := range snap.Find(expandCandidates) {
		text := el.InnerText()
		if len(text) > maxAffordanceLabel || !morePattern.MatchString(text) || !el.Visible() {
			continue
		}

		r.logger.Debug("expanding description", "tag", el.Tag())
		if err := el.Click(ctx); err != nil {
			return err
		}
		return poll.Sleep(ctx, r.timings.Settle)
	}

	r.logger.Debug("no collapsed description")
	return nil
}

func (r *Revealer) openPanel(ctx context.Context, page *dom.Page) error {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Has(PanelSelector) {
		return nil
	}

	button, ok := poll.Find(ctx, r.showTranscriptButton(page), r.timings.ShowButton, r.timings.Step)
	if ok {
		r.logger.Debug("opening transcript via button")
		if err := button.ScrollIntoView(ctx); err != nil {
			return fmt.Errorf("scroll to transcript button: %w", err)
		}
		if err := button.Click(ctx); err != nil {
			return fmt.Errorf("click transcript button: %w", err)
		}
		return r.waitForPanel(ctx, page)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Debug("transcript button absent, trying actions menu")
	return r.openPanelFromMenu(ctx, page)
}

func (r *Revealer) openPanelFromMenu(ctx context.Context, page *dom.Page) error {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		return err
	}
	menu, ok := snap.First(actionsMenuSelector)
	if !ok {
		return fmt.Errorf("actions menu: %w", dom.ErrNotFound)
	}
	if err := menu.Click(ctx); err != nil {
		return fmt.Errorf("open actions menu: %w", err)
	}

	err = poll.Until(ctx, func(ctx context.Context) bool {
		return r.has(ctx, page, menuItemSelector)
	}, r.timings.Menu, r.timings.Step)
	if err != nil {
		return fmt.Errorf("actions menu items: %w", err)
	}

	snap, err = page.Snapshot(ctx)
	if err != nil {
		return err
	}
	for _, item := range snap.Find(menuItemSelector) {
		if !transcriptPattern.MatchString(item.InnerText()) {
			continue
		}
		if err := item.Click(ctx); err != nil {
			return fmt.Errorf("click transcript menu item: %w", err)
		}
		return r.waitForPanel(ctx, page)
	}
	return fmt.Errorf("transcript option in actions menu: %w", dom.ErrNotFound)
}

func (r *Revealer) waitForPanel(ctx context.Context, page *dom.Page) error {
	err := poll.Until(ctx, func(ctx context.Context) bool {
		return r.has(ctx, page, PanelSelector)
	}, r.timings.Panel, r.timings.Step)
	if err != nil {
		return fmt.Errorf("transcript panel: %w", err)
	}
	return nil
}

// showTranscriptButton matches on the accessible label and visible text.
// A matching renderer is clicked through its inner button.
func (r *Revealer) showTranscriptButton(page *dom.Page) func(context.Context) (dom.Element, bool) {
	return func(ctx context.Context) (dom.Element, bool) {
		snap, err := page.Snapshot(ctx)
		if err != nil {
			r.logger.Debug("snapshot failed", "error", err)
			return dom.Element{}, false
		}

		for _, el := range snap.Find(showTranscriptCandidates) {
			label, _ := el.Attr("aria-label")
			if !showTranscriptPattern.MatchString(label + " " + el.InnerText()) {
				continue
			}
			if el.Tag() == "ytd-button-renderer" {
				if inner := el.Find("button"); len(inner) > 0 {
					return inner[0], true
				}
			}
			return el, true
		}
		return dom.Element{}, false
	}
}

func (r *Revealer) has(ctx context.Context, page *dom.Page, sel string) bool {
	snap, err := page.Snapshot(ctx)
	if err != nil {
		r.logger.Debug("snapshot failed", "error", err)
		return false
	}
	return snap.Has(sel)
}
