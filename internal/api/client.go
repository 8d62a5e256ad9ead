// Package api fetches raw records from the two backend sources: the
// announcements feed and the calendar service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"

	"github.com/Ivevan/dorsu-connect-calendar/internal/event"
)

const (
	postsPath    = "/api/posts"
	calendarPath = "/api/calendar/events"

	maxAttempts = 3
)

// StatusError indicates a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, truncate(e.Body, 200))
}

func isClientError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// Client talks to the backend over HTTP with bounded retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	instanceID string
}

// New builds a client for the given backend base URL. Each client carries a
// per-session instance id that is attached to requests and log lines.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		instanceID: uuid.NewString(),
	}
}

// FetchPosts returns all announcement posts. The feed has no server-side
// date filtering.
func (c *Client) FetchPosts(ctx context.Context) ([]event.RawPostEvent, error) {
	body, err := c.get(ctx, c.baseURL+postsPath)
	if err != nil {
		return nil, fmt.Errorf("fetch posts: %w", err)
	}

	posts, err := decodeList[event.RawPostEvent](body, "posts")
	if err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return posts, nil
}

// FetchCalendarEvents returns calendar records overlapping [start, end].
func (c *Client) FetchCalendarEvents(ctx context.Context, start, end time.Time, limit int) ([]event.RawCalendarEvent, error) {
	query := url.Values{}
	query.Set("startDate", start.UTC().Format(time.RFC3339))
	query.Set("endDate", end.UTC().Format(time.RFC3339))
	query.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, c.baseURL+calendarPath+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}

	events, err := decodeList[event.RawCalendarEvent](body, "events")
	if err != nil {
		return nil, fmt.Errorf("decode calendar events: %w", err)
	}
	return events, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Client-Instance", c.instanceID)

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer func() {
				_ = resp.Body.Close()
			}()

			payload, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return fmt.Errorf("read response: %w", readErr)
			}

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
			}

			body = payload
			return nil
		},
		retry.Attempts(maxAttempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("retrying backend request", "attempt", n, "url", requestURL, "error", err)
		}),
		retry.RetryIf(func(err error) bool {
			return !isClientError(err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// decodeList accepts both a bare JSON array and the wrapped forms the
// backend has shipped over time: {"<key>": [...]} and {"data": [...]}.
func decodeList[T any](body []byte, key string) ([]T, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	for _, candidate := range []string{key, "data"} {
		raw, ok := envelope[candidate]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	return nil, fmt.Errorf("response has no %q or \"data\" list", key)
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "..."
}
