package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

// Client reads the collections from a paginated JSON API. Every request
// carries the static bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func (c *Client) ListOrganizations(ctx context.Context, p Page) ([]models.Organization, error) {
	return list[models.Organization](ctx, c, "organizations", p)
}

func (c *Client) ListLocations(ctx context.Context, p Page) ([]models.Location, error) {
	return list[models.Location](ctx, c, "locations", p)
}

func (c *Client) ListEvents(ctx context.Context, p Page) ([]models.Event, error) {
	return list[models.Event](ctx, c, "events", p)
}

// Close drops idle keep-alive connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func list[T any](ctx context.Context, c *Client, path string, p Page) ([]T, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Index))
	q.Set("pageSize", strconv.Itoa(p.Size))
	if p.ActiveOnly {
		q.Set("active", "true")
	}
	if len(p.Types) > 0 {
		types := make([]string, len(p.Types))
		for i, t := range p.Types {
			types[i] = string(t)
		}
		q.Set("types", strings.Join(types, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var data listResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}
	return data.Items, nil
}
