package cosmic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fooddash/fooddash-backend/pkg/config"
	"github.com/fooddash/fooddash-backend/pkg/logger"
)

// ErrNotFound signals a single-object lookup that matched nothing. List
// queries never return it; a 404 from the backend is an empty result there.
var ErrNotFound = errors.New("cosmic: object not found")

// Object is the generic shape of a content-backend record. Metadata stays
// raw so each domain package can decode its own schema.
type Object struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug"`
	Title    string          `json:"title"`
	Type     string          `json:"type"`
	Metadata json.RawMessage `json:"metadata"`
}

// Query configures a find call against the object store.
type Query struct {
	// Filter is the raw object query, e.g. {"type": "restaurants"}.
	Filter map[string]any
	// Props limits returned fields; empty means the backend default.
	Props []string
	// Depth resolves referenced objects this many levels (0 or 1 here).
	Depth int
	Limit int
}

// Client is a thin REST client for the headless content backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bucketSlug string
	readKey    string
	writeKey   string
	logg       *logger.Logger
}

// NewClient validates credentials and returns a bucket-scoped client.
func NewClient(cfg config.CosmicConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketSlug) == "" {
		return nil, errors.New("cosmic bucket slug is required")
	}
	if strings.TrimSpace(cfg.ReadKey) == "" {
		return nil, errors.New("cosmic read key is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		bucketSlug: cfg.BucketSlug,
		readKey:    cfg.ReadKey,
		writeKey:   cfg.WriteKey,
		logg:       logg,
	}, nil
}

type findResponse struct {
	Objects []Object `json:"objects"`
	Total   int      `json:"total"`
}

type objectResponse struct {
	Object Object `json:"object"`
}

// Find returns all objects matching the query. A backend 404 is an empty
// result, not an error.
func (c *Client) Find(ctx context.Context, q Query) ([]Object, error) {
	endpoint, err := c.findURL(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cosmic find: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError("find", resp)
	}

	var payload findResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cosmic find: decoding response: %w", err)
	}
	return payload.Objects, nil
}

// FindOne returns the first object matching the query or ErrNotFound.
func (c *Client) FindOne(ctx context.Context, q Query) (*Object, error) {
	q.Limit = 1
	objects, err := c.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, ErrNotFound
	}
	obj := objects[0]
	return &obj, nil
}

// InsertInput is the shape of a create-object call.
type InsertInput struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Metadata any    `json:"metadata"`
}

// Insert writes a new object using the bucket's write key.
func (c *Client) Insert(ctx context.Context, input InsertInput) (*Object, error) {
	if strings.TrimSpace(c.writeKey) == "" {
		return nil, errors.New("cosmic write key is required for inserts")
	}

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("cosmic insert: encoding input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/objects", c.baseURL, c.bucketSlug)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.writeKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cosmic insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.statusError("insert", resp)
	}

	var payload objectResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("cosmic insert: decoding response: %w", err)
	}
	return &payload.Object, nil
}

// Ping verifies the bucket is reachable with the configured read key.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Find(ctx, Query{Filter: map[string]any{"type": "restaurants"}, Limit: 1})
	return err
}

func (c *Client) findURL(q Query) (string, error) {
	filter := q.Filter
	if filter == nil {
		filter = map[string]any{}
	}
	rawQuery, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("cosmic find: encoding query: %w", err)
	}

	values := url.Values{}
	values.Set("query", string(rawQuery))
	values.Set("read_key", c.readKey)
	if len(q.Props) > 0 {
		values.Set("props", strings.Join(q.Props, ","))
	}
	if q.Depth > 0 {
		values.Set("depth", strconv.Itoa(q.Depth))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}

	return fmt.Sprintf("%s/buckets/%s/objects?%s", c.baseURL, c.bucketSlug, values.Encode()), nil
}

func (c *Client) statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("cosmic %s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
