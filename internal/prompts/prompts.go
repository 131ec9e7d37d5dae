// Package prompts holds the configured instruction templates and the ways a
// run picks one of them.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"yt_digest/internal/domain"
)

// MaxPrompts caps the configured prompt list.
const MaxPrompts = 5

var ErrUnknownPrompt = errors.New("unknown prompt")

// Fallback is used when no prompt is configured.
var Fallback = domain.PromptSelection{
	Name:      "Default",
	Content:   "Summarize this video",
	IsDefault: true,
}

// Normalize drops prompts without content, caps the list at MaxPrompts and
// leaves exactly one default: the first flagged entry, else the first.
func Normalize(prompts []domain.PromptSelection) []domain.PromptSelection {
	out := make([]domain.PromptSelection, 0, min(len(prompts), MaxPrompts))
	for _, p := range prompts {
		if strings.TrimSpace(p.Content) == "" {
			continue
		}
		if len(out) == MaxPrompts {
			break
		}
		if p.Name == "" {
			p.Name = fmt.Sprintf("Prompt %d", len(out)+1)
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []domain.PromptSelection{Fallback}
	}

	def := DefaultIndex(out)
	for i := range out {
		out[i].IsDefault = i == def
	}
	return out
}

// DefaultIndex returns the first flagged entry, else 0. It is -1 for an
// empty list.
func DefaultIndex(prompts []domain.PromptSelection) int {
	if len(prompts) == 0 {
		return -1
	}
	for i, p := range prompts {
		if p.IsDefault {
			return i
		}
	}
	return 0
}

// Default returns the default prompt, or Fallback for an empty list.
func Default(prompts []domain.PromptSelection) domain.PromptSelection {
	if i := DefaultIndex(prompts); i >= 0 {
		return prompts[i]
	}
	return Fallback
}

// Selector picks a prompt. A nil index means the user cancelled.
type Selector interface {
	Select(ctx context.Context, prompts []domain.PromptSelection) (*int, error)
}

// DefaultSelector always picks the default prompt.
type DefaultSelector struct{}

func (DefaultSelector) Select(_ context.Context, prompts []domain.PromptSelection) (*int, error) {
	i := DefaultIndex(prompts)
	if i < 0 {
		return nil, nil
	}
	return &i, nil
}

// NamedSelector picks a prompt by case-insensitive name.
type NamedSelector struct {
	Name string
}

func (s NamedSelector) Select(_ context.Context, prompts []domain.PromptSelection) (*int, error) {
	for i, p := range prompts {
		if strings.EqualFold(p.Name, s.Name) {
			return &i, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", s.Name, ErrUnknownPrompt)
}

// InteractiveSelector asks on the terminal. Input that is not a terminal
// is read in accessible mode, one numbered answer per line.
type InteractiveSelector struct {
	In  io.Reader
	Out io.Writer
}

func (s InteractiveSelector) Select(ctx context.Context, prompts []domain.PromptSelection) (*int, error) {
	if len(prompts) == 0 {
		return nil, nil
	}

	idx := max(DefaultIndex(prompts), 0)
	options := make([]huh.Option[int], 0, len(prompts))
	for i, p := range prompts {
		label := p.Name
		if p.IsDefault {
			label += " (default)"
		}
		options = append(options, huh.NewOption(label, i))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Prompt").
				Description("Instruction sent ahead of the transcript").
				Options(options...).
				Value(&idx),
		),
	).
		WithInput(s.In).
		WithOutput(s.Out)

	if f, ok := s.In.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, nil
		}
		return nil, fmt.Errorf("select prompt: %w", err)
	}
	return &idx, nil
}
