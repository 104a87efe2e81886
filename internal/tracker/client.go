// Package tracker is a small client for the Kaiten REST API: posting time
// logs and looking up the current user and their roles.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/thiagokokada/kaiten-timelog/internal/buildinfo"
)

const (
	apiPrefix  = "/api/latest"
	dateLayout = "2006-01-02"
	// maxErrorBody caps how much of an error response ends up in APIError.
	maxErrorBody = 4 << 10
)

type Config struct {
	URL    string
	Token  string
	RoleID int
}

type Client struct {
	base   string
	token  string
	roleID int
	http   *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(cfg.URL, "/"),
		token:  cfg.Token,
		roleID: cfg.RoleID,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TimeLog is one entry to post. RoleID 0 uses the client's configured role.
type TimeLog struct {
	CardID  int
	Minutes int
	RoleID  int
	Date    time.Time
	Comment string
}

type timeLogRequest struct {
	RoleID    int    `json:"role_id"`
	TimeSpent int    `json:"time_spent"`
	ForDate   string `json:"for_date"`
	Comment   string `json:"comment,omitempty"`
}

// AddTimeLog posts l to the card's time log.
func (c *Client) AddTimeLog(ctx context.Context, l TimeLog) error {
	if l.CardID <= 0 {
		return fmt.Errorf("%w: card id %d", ErrInvalidTimeLog, l.CardID)
	}
	if l.Minutes <= 0 {
		return fmt.Errorf("%w: %d minutes", ErrInvalidTimeLog, l.Minutes)
	}
	role := l.RoleID
	if role == 0 {
		role = c.roleID
	}
	date := l.Date
	if date.IsZero() {
		date = time.Now()
	}
	body := timeLogRequest{
		RoleID:    role,
		TimeSpent: l.Minutes,
		ForDate:   date.Format(dateLayout),
		Comment:   l.Comment,
	}
	path := apiPrefix + "/cards/" + strconv.Itoa(l.CardID) + "/time-logs"
	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("add time log to card %d: %w", l.CardID, err)
	}
	slog.Info("time log added",
		slog.Int("card", l.CardID),
		slog.Int("minutes", l.Minutes),
		slog.String("date", body.ForDate),
	)
	return nil
}

type User struct {
	ID       int    `json:"id"`
	UID      string `json:"uid"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// CurrentUser returns the token's owner. It doubles as a token check.
func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/users/current", nil, &u); err != nil {
		return User{}, fmt.Errorf("current user: %w", err)
	}
	return u, nil
}

type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// UserRoles lists the roles time can be logged under.
func (c *Client) UserRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/user-roles", nil, &roles); err != nil {
		return nil, fmt.Errorf("user roles: %w", err)
	}
	return roles, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	slog.Debug("kaiten request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
