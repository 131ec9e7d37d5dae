package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"yt_digest/internal/domain"
	"yt_digest/internal/source/youtube"
)

const (
	userAgent = "YTDigest/1.0"

	summaryBaseURL = "https://youtube-summary.com/"
	tokenLeeway    = 60 * time.Second
	base36         = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// WallabagConfig holds the API credentials of a wallabag instance.
type WallabagConfig struct {
	URL          string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	Timeout      time.Duration
}

// Wallabag saves summaries as wallabag entries.
type Wallabag struct {
	httpClient *http.Client
	cfg        WallabagConfig
	logger     *slog.Logger

	now    func() time.Time
	randID func() string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewWallabag(cfg WallabagConfig, logger *slog.Logger) *Wallabag {
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	return &Wallabag{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger.With("destination", "wallabag"),
		now:    time.Now,
		randID: randomID,
	}
}

func (w *Wallabag) Name() string {
	return "wallabag"
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type entryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (w *Wallabag) Deliver(ctx context.Context, summary *domain.Summary) error {
	token, err := w.accessToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(entryRequest{
		Title:   summary.Title,
		Content: `<article class="entry-content">` + summary.HTML + `</article>`,
		URL:     w.entryURL(summary),
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+"/api/entries.json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("create entry: status %d: %s", resp.StatusCode, errorMessage(text))
	}
	if !json.Valid(text) {
		return fmt.Errorf("create entry: response was not valid JSON: %s", truncate(string(text), 200))
	}

	w.logger.Debug("entry created", "status", resp.StatusCode)
	return nil
}

// entryURL is a unique per-summary URL keyed by the video id, so that
// repeated summaries of one video are kept as separate entries.
func (w *Wallabag) entryURL(summary *domain.Summary) string {
	id, ok := youtube.FindVideoID(summary.HTML)
	if !ok {
		id, ok = youtube.VideoID(summary.VideoURL)
	}
	if !ok {
		return summaryBaseURL
	}
	return summaryBaseURL + "youtube-id/" + id + "/unique-summary-id/" + w.randID()
}

// accessToken returns the cached token unless it expires within a minute.
func (w *Wallabag) accessToken(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if w.token != "" && w.expires.After(now.Add(tokenLeeway)) {
		return w.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", w.cfg.ClientID)
	form.Set("client_secret", w.cfg.ClientSecret)
	form.Set("username", w.cfg.Username)
	form.Set("password", w.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL+"/oauth/v2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("get token: status %d: %s", resp.StatusCode, errorMessage(text))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("get token: empty access token")
	}

	w.token = tok.AccessToken
	w.expires = now.Add(time.Duration(tok.ExpiresIn) * time.Second)
	w.logger.Debug("token refreshed", "expires", w.expires)

	return w.token, nil
}

func errorMessage(body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		if e.ErrorDescription != "" {
			return e.ErrorDescription
		}
		if e.Error != "" {
			return e.Error
		}
	}
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(strings.ToUpper(text), "<!DOCTYPE") {
		return "wallabag returned an HTML error page, check the wallabag URL and credentials"
	}
	return truncate(text, 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func randomID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = base36[rand.IntN(len(base36))]
	}
	return string(b)
}
