// Package remote talks to the sticks game server: it loads the start page to
// open a session and submits moves to /play.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sticks "github.com/tkahng/stickpile"
)

const maxBody = 1 << 20

var sticksNumberRe = regexp.MustCompile(`id=["']sticks-number["'][^>]*>\s*(\d+)\s*<`)

type Options struct {
	BaseURL string
	// HumanName is the loser name the server reports when the human lost.
	HumanName string
	// Timeout bounds each request; zero means no timeout.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Client keeps the server session in a cookie jar, like a browser tab.
type Client struct {
	base      *url.URL
	http      *http.Client
	humanName string
	logger    *slog.Logger
}

var (
	_ sticks.Remote = (*Client)(nil)
	_ sticks.Loader = (*Client)(nil)
)

type playResponse struct {
	EndOfGame bool   `json:"endOfGame"`
	Loser     string `json:"loser"`
	Number    int    `json:"number"`
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url scheme %q", base.Scheme)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	humanName := opts.HumanName
	if humanName == "" {
		humanName = sticks.Human.String()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	// nolint:exhaustruct
	return &Client{
		base:      base,
		http:      &http.Client{Jar: jar, Timeout: opts.Timeout},
		humanName: humanName,
		logger:    logger,
	}, nil
}

// Start loads the start page and returns the initial pile size.
func (c *Client) Start(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"), nil)
	if err != nil {
		return 0, &sticks.CommunicationError{Err: err}
	}
	body, err := c.do(req)
	if err != nil {
		return 0, err
	}
	m := sticksNumberRe.FindSubmatch(body)
	if m == nil {
		return 0, &sticks.CommunicationError{Err: errors.New("start page has no sticks count")}
	}
	count, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, &sticks.CommunicationError{Err: fmt.Errorf("invalid sticks count: %w", err)}
	}
	return count, nil
}

// Play submits the human move and decodes the opponent's answer.
func (c *Client) Play(ctx context.Context, m sticks.Move) (sticks.TurnOutcome, error) {
	if err := m.Validate(); err != nil {
		return sticks.TurnOutcome{}, err
	}
	form := url.Values{"number": {strconv.Itoa(m.Amount)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/play"), strings.NewReader(form.Encode()))
	if err != nil {
		return sticks.TurnOutcome{}, &sticks.CommunicationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return sticks.TurnOutcome{}, err
	}
	var resp playResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return sticks.TurnOutcome{}, &sticks.CommunicationError{Err: fmt.Errorf("invalid play response: %w", err)}
	}
	return c.outcome(resp)
}

func (c *Client) outcome(resp playResponse) (sticks.TurnOutcome, error) {
	if !resp.EndOfGame {
		move := sticks.Move{Actor: sticks.Opponent, Amount: resp.Number}
		if err := move.Validate(); err != nil {
			return sticks.TurnOutcome{}, &sticks.CommunicationError{Err: err}
		}
		return sticks.TurnOutcome{OpponentMove: &move}, nil
	}

	winner := sticks.Human
	if resp.Loser == c.humanName {
		winner = sticks.Opponent
	}
	out := sticks.TurnOutcome{Terminal: true, Winner: &winner}
	// the server reports 0 when the human took the last stick
	if winner == sticks.Human && resp.Number > 0 {
		move := sticks.Move{Actor: sticks.Opponent, Amount: resp.Number}
		if err := move.Validate(); err != nil {
			return sticks.TurnOutcome{}, &sticks.CommunicationError{Err: err}
		}
		out.OpponentMove = &move
	}
	return out, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", slog.String("url", req.URL.String()), slog.Any("error", err))
		return nil, &sticks.CommunicationError{Err: err}
	}
	// nolint:errcheck
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.logger.Debug("request done",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		return nil, &sticks.CommunicationError{Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &sticks.AuthorizationError{Message: strings.TrimSpace(string(body))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &sticks.CommunicationError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	return body, nil
}

func (c *Client) endpoint(path string) string {
	return c.base.JoinPath(path).String()
}
