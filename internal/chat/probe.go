package chat

import "yt_digest/internal/dom"

// Probe detects the controls the chat page renders under an answer once
// streaming has stopped.
type Probe struct {
	Name  string
	Match func(snap *dom.Snapshot, last dom.Element) bool
}

// DefaultProbes are tried in order; the first match wins. Support for a
// new page layout is added by appending a probe.
var DefaultProbes = []Probe{
	{Name: "copy_button", Match: copyButtonAfter},
	{Name: "action_row", Match: actionRowAfter},
	{Name: "full_width_row", Match: fullWidthRowAfter},
}

// copyButtonAfter matches a copy button whose row directly follows last.
func copyButtonAfter(snap *dom.Snapshot, last dom.Element) bool {
	for _, btn := range snap.Find(copyButtonSelector) {
		row, ok := btn.Closest(actionRowSelector)
		if !ok {
			continue
		}
		if prev, ok := row.PrevSibling(); ok && prev.Same(last) {
			return true
		}
	}
	return false
}

func actionRowAfter(snap *dom.Snapshot, last dom.Element) bool {
	for _, row := range snap.Find(actionRowSelector) {
		if row.HasClass(actionRowClass) && row.Follows(last) {
			return true
		}
	}
	return false
}

func fullWidthRowAfter(snap *dom.Snapshot, last dom.Element) bool {
	for _, row := range snap.Find(fullWidthRowSelector) {
		if row.Follows(last) {
			return true
		}
	}
	return false
}

// matchProbe returns the name of the first matching probe.
func matchProbe(probes []Probe, snap *dom.Snapshot, last dom.Element) (string, bool) {
	for _, p := range probes {
		if p.Match(snap, last) {
			return p.Name, true
		}
	}
	return "", false
}
