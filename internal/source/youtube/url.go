package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

const watchURL = "https://www.youtube.com/watch?v="

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Patterns tried in order when looking for a video link inside free text.
var embeddedIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`https://www\.youtube\.com/watch\?v=([\w-]{11})`),
	regexp.MustCompile(`youtube\.com/(?:watch\?v=|embed/|shorts/)([\w-]{11})`),
}

// VideoID extracts the id from youtu.be/ID, watch?v=ID, /shorts/ID and
// /embed/ID links.
func VideoID(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	case "youtube.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) >= 2 && (parts[0] == "shorts" || parts[0] == "embed") {
			id = parts[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

// CanonicalURL normalizes a video link to https://www.youtube.com/watch?v=ID.
// Anything else is returned unchanged.
func CanonicalURL(raw string) string {
	id, ok := VideoID(raw)
	if !ok {
		return raw
	}
	return watchURL + id
}

// FindVideoID returns the first video id linked from text.
func FindVideoID(text string) (string, bool) {
	for _, re := range embeddedIDPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}
