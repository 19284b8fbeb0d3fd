package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/uzochukwueddie/spin-the-match/internal/domain"
	"github.com/uzochukwueddie/spin-the-match/internal/ports"
)

// Notifier implements ports.Publisher by POSTing revealed outcomes to a
// webhook. Fallback URLs are tried in order when the primary fails.
type Notifier struct {
	httpClient   *http.Client
	token        string
	url          string
	fallbackURLs []string
	logger       *slog.Logger
}

func NewNotifier(httpClient *http.Client, token, url string, fallbackURLs []string, logger *slog.Logger) *Notifier {
	return &Notifier{
		httpClient:   httpClient,
		token:        token,
		url:          strings.TrimSpace(url),
		fallbackURLs: fallbackURLs,
		logger:       logger,
	}
}

// Payload is the JSON body delivered to the webhook.
type Payload struct {
	Event      ports.EventType `json:"event"`
	WheelID    string          `json:"wheel_id"`
	Generation uint64          `json:"generation"`
	Winner     domain.Segment  `json:"winner"`
	EntityA    domain.Entity   `json:"entity_a"`
	EntityB    domain.Entity   `json:"entity_b"`
	TargetDeg  float64         `json:"target_deg"`
	At         string          `json:"at"`
}

// Publish delivers result_revealed events; every other event is skipped.
// Delivery failures are logged and never reach the caller.
func (n *Notifier) Publish(ctx context.Context, ev ports.Event) {
	if ev.Type != ports.EventResultRevealed || ev.State.Outcome == nil {
		return
	}
	if err := n.Notify(ctx, toPayload(ev)); err != nil {
		n.logger.WarnContext(ctx, "webhook delivery failed", "wheel_id", ev.WheelID, "error", err)
	}
}

// Notify sends p to the primary URL, then each fallback until one accepts.
func (n *Notifier) Notify(ctx context.Context, p Payload) error {
	urls := make([]string, 0, 1+len(n.fallbackURLs))
	urls = append(urls, n.url)
	urls = append(urls, n.fallbackURLs...)

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for _, url := range urls {
		err := n.post(ctx, url, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if len(urls) > 1 {
			n.logger.WarnContext(ctx, "webhook target failed, trying next", "url", url, "error", err)
		}
	}
	return lastErr
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func toPayload(ev ports.Event) Payload {
	return Payload{
		Event:      ev.Type,
		WheelID:    ev.WheelID,
		Generation: ev.State.Outcome.Generation,
		Winner:     ev.State.Outcome.Segment,
		EntityA:    ev.State.EntityA,
		EntityB:    ev.State.EntityB,
		TargetDeg:  ev.State.Outcome.TargetDeg,
		At:         ev.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
