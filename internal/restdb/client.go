// Package restdb is a thin client for the hosted database's REST interface
// (PostgREST protocol). It is a stateless wrapper over net/http: one Client
// is shared process-wide and is safe for concurrent use.
package restdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// Error is a failed REST round trip: a non-2xx response or a transport error.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("restdb: status %d: %s", e.StatusCode, e.Body)
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, table, rawQuery string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + table
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Probe checks that a table exists by requesting zero rows from it.
func (c *Client) Probe(ctx context.Context, table string) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, "limit=0", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{StatusCode: resp.StatusCode, Body: string(b)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// Select runs a filtered query and returns the rows plus the exact total
// count reported by the Content-Range header.
func (c *Client) Select(ctx context.Context, table string, q Query) ([]map[string]any, int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, table, q.Encode(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, 0, &Error{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, 0, err
	}

	total := parseContentRangeTotal(resp.Header.Get("Content-Range"))
	if total < 0 {
		total = int64(len(rows))
	}
	return rows, total, nil
}

// Insert writes one row and returns its stored representation.
func (c *Client) Insert(ctx context.Context, table string, row any) (map[string]any, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, table, "", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &Error{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update patches all rows matched by q with the given fields.
func (c *Client) Update(ctx context.Context, table string, q Query, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, table, q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{StatusCode: resp.StatusCode, Body: string(b)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// parseContentRangeTotal extracts the total from "0-11/42". Returns -1 when
// the header is absent or the total is "*".
func parseContentRangeTotal(h string) int64 {
	idx := strings.LastIndex(h, "/")
	if idx < 0 {
		return -1
	}
	totalStr := h[idx+1:]
	if totalStr == "*" || totalStr == "" {
		return -1
	}
	total, err := strconv.ParseInt(totalStr, 10, 64)
	if err != nil {
		return -1
	}
	return total
}
