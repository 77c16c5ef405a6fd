package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sm-moshi/cursor-stats/pkg/credential"
	"github.com/sm-moshi/cursor-stats/pkg/models"
)

// sessionCookie is the cookie the dashboard authenticates with.
const sessionCookie = "WorkosCursorSessionToken"

// Client talks to the subscription dashboard. A 401 triggers exactly one
// credential re-resolution and one retry of the failing call; transport
// failures and other statuses propagate unretried.
type Client struct {
	base  string
	http  *http.Client
	creds credential.Source
	log   *logrus.Logger
}

// NewClient creates a dashboard client for the given endpoint root.
func NewClient(base string, creds credential.Source, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: 30 * time.Second},
		creds: creds,
		log:   log,
	}
}

// IndividualUsage fetches the premium quota feed for the current subject.
func (c *Client) IndividualUsage(ctx context.Context) (models.IndividualUsage, error) {
	var out models.IndividualUsage
	if err := c.do(ctx, http.MethodGet, "/api/usage", nil, &out); err != nil {
		return models.IndividualUsage{}, err
	}
	return out, nil
}

// MonthlyInvoice fetches the raw invoice feed for one calendar month.
func (c *Client) MonthlyInvoice(ctx context.Context, month time.Month, year int) (models.MonthlyInvoice, error) {
	body := map[string]any{
		"month":              int(month),
		"year":               year,
		"includeUsageEvents": false,
	}
	var out models.MonthlyInvoice
	if err := c.do(ctx, http.MethodPost, "/api/dashboard/get-monthly-invoice", body, &out); err != nil {
		return models.MonthlyInvoice{}, err
	}
	return out, nil
}

// Teams fetches the team roster for the current subject. An empty roster
// means the subject is billed individually.
func (c *Client) Teams(ctx context.Context) ([]models.Team, error) {
	var out struct {
		Teams []models.Team `json:"teams"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/dashboard/teams", map[string]any{}, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

// TeamMembers fetches one team's member list.
func (c *Client) TeamMembers(ctx context.Context, teamID int) ([]models.TeamMember, error) {
	var out struct {
		Members []models.TeamMember `json:"teamMembers"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/dashboard/team", map[string]any{"teamId": teamID}, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// TeamUsage fetches the team aggregate usage feed.
func (c *Client) TeamUsage(ctx context.Context, teamID int) (models.TeamUsage, error) {
	var out models.TeamUsage
	if err := c.do(ctx, http.MethodPost, "/api/dashboard/get-team-usage", map[string]any{"teamId": teamID}, &out); err != nil {
		return models.TeamUsage{}, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnauthorized, err)
	}

	err = c.attempt(ctx, method, path, token, body, out)
	if !errors.Is(err, ErrUnauthorized) {
		return err
	}

	// One bounded recovery: re-resolve the credential and retry once.
	c.log.WithField("path", path).Debug("session token rejected, re-resolving credential")
	token, rerr := c.creds.Refresh(ctx)
	if rerr != nil {
		return fmt.Errorf("%w: %s", ErrUnauthorized, rerr)
	}
	return c.attempt(ctx, method, path, token, body, out)
}

func (c *Client) attempt(ctx context.Context, method, path, token string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (%s)", ErrUnauthorized, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Status: resp.StatusCode, Path: path}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
