// Package client talks to the trainlog service HTTP API. It is used by logbookctl.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

var ErrNotFound = errors.New("not found")

const defaultTimeout = 30 * time.Second

// APIError is returned for every non 2xx response other than 404.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("service responded with %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	rc *resty.Client
}

func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(defaultTimeout).
		SetTransport(otelhttp.NewTransport(http.DefaultTransport))
	return &Client{rc: rc}
}

// ListFilter narrows down List; empty fields are not sent.
type ListFilter struct {
	Type string
	From string
	To   string
}

func (c *Client) List(ctx context.Context, filter ListFilter) (*activities.ListResponse, error) {
	req := c.rc.R().SetContext(ctx)
	if filter.Type != "" {
		req.SetQueryParam("type", filter.Type)
	}
	if filter.From != "" {
		req.SetQueryParam("from", filter.From)
	}
	if filter.To != "" {
		req.SetQueryParam("to", filter.To)
	}

	var list activities.ListResponse
	resp, err := req.SetResult(&list).Get("/activities")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return &list, nil
}

func (c *Client) Add(ctx context.Context, draft activities.Activity) (*activities.Activity, error) {
	var saved activities.Activity
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(draft).
		SetResult(&saved).
		Post("/activities")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("add activity: %w", err)
	}
	return &saved, nil
}

func (c *Client) Get(ctx context.Context, id string) (*activities.Activity, error) {
	var activity activities.Activity
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetResult(&activity).
		Get("/activities/{id}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	return &activity, nil
}

func (c *Client) Update(ctx context.Context, id string, patch activities.ActivityPatch) (*activities.Activity, error) {
	var updated activities.Activity
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(patch).
		SetResult(&updated).
		Put("/activities/{id}")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("update activity %s: %w", id, err)
	}
	return &updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/activities/{id}")
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return nil
}

// ClearData removes all activities and notes.
func (c *Client) ClearData(ctx context.Context) error {
	resp, err := c.rc.R().SetContext(ctx).Delete("/data")
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}
	return nil
}

// Import sends a backup document and returns the number of imported activities.
func (c *Client) Import(ctx context.Context, backup []byte) (int, error) {
	var res activities.ImportResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(backup).
		SetResult(&res).
		Post("/import")
	if err := checkResponse(resp, err); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}
	return res.Imported, nil
}

// Export returns the raw backup document.
func (c *Client) Export(ctx context.Context) ([]byte, error) {
	resp, err := c.rc.R().SetContext(ctx).Get("/export")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return resp.Body(), nil
}

func (c *Client) GetNotes(ctx context.Context) (string, error) {
	var payload activities.NotesPayload
	resp, err := c.rc.R().SetContext(ctx).SetResult(&payload).Get("/notes")
	if err := checkResponse(resp, err); err != nil {
		return "", fmt.Errorf("get notes: %w", err)
	}
	return payload.Notes, nil
}

func (c *Client) SaveNotes(ctx context.Context, notes string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(activities.NotesPayload{Notes: notes}).
		Put("/notes")
	if err := checkResponse(resp, err); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func (c *Client) Summary(ctx context.Context) (*stats.Summary, error) {
	var summary stats.Summary
	resp, err := c.rc.R().SetContext(ctx).SetResult(&summary).Get("/stats/summary")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &summary, nil
}

// Weekly returns the weekly buckets, newest first. weeks <= 0 uses the service default.
func (c *Client) Weekly(ctx context.Context, weeks int) ([]stats.WeekBucket, error) {
	req := c.rc.R().SetContext(ctx)
	if weeks > 0 {
		req.SetQueryParam("weeks", strconv.Itoa(weeks))
	}

	var buckets []stats.WeekBucket
	resp, err := req.SetResult(&buckets).Get("/stats/weekly")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("weekly stats: %w", err)
	}
	return buckets, nil
}

func (c *Client) Chart(ctx context.Context) (*stats.ChartSeries, error) {
	var chart stats.ChartSeries
	resp, err := c.rc.R().SetContext(ctx).SetResult(&chart).Get("/stats/chart")
	if err := checkResponse(resp, err); err != nil {
		return nil, fmt.Errorf("week chart: %w", err)
	}
	return &chart, nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(resp.String()),
		}
	}
	return nil
}
