// Package feed retrieves card collections from the rulings API.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"karm/config"
)

// Batch is a set of records fetched from a single endpoint.
type Batch struct {
	Group    Group
	Source   string
	Endpoint string
	Items    []gjson.Result
}

// Data is everything fetched during a run.
type Data struct {
	// Base is the API base used for the whole run.
	Base    string
	Batches []Batch
}

// Of returns batches of a group in fetch order.
func (d *Data) Of(g Group) []Batch {
	var out []Batch
	for _, b := range d.Batches {
		if b.Group == g {
			out = append(out, b)
		}
	}
	return out
}

// Count returns total number of records of a group.
func (d *Data) Count(g Group) int {
	n := 0
	for _, b := range d.Of(g) {
		n += len(b.Items)
	}
	return n
}

// Client talks to the API. Requests are sequential, each one bounded by
// configured timeout.
type Client struct {
	cfg      *config.APIConfig
	http     *http.Client
	snapshot *Snapshot
	log      *zap.Logger
}

// NewClient returns client for configured API, snapshot may be nil.
func NewClient(cfg *config.APIConfig, snapshot *Snapshot, log *zap.Logger) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		snapshot: snapshot,
		log:      log.Named("feed"),
	}
}

func (c *Client) bases() []string {
	var bases []string
	for _, b := range []string{c.cfg.BaseURL, c.cfg.BackupURL} {
		if b = strings.TrimRight(b, "/"); b != "" {
			bases = append(bases, b)
		}
	}
	return bases
}

// Fetch discovers endpoints and downloads all collections. The first base
// answering manifest request is used for the rest of the run, when none
// answers primary base is used with default endpoints. Failed endpoints are
// logged and skipped, only context cancellation is returned as an error.
func (c *Client) Fetch(ctx context.Context) (*Data, error) {
	bases := c.bases()
	if len(bases) == 0 {
		return nil, errors.New("no API base configured")
	}

	data := &Data{Base: bases[0]}
	var keys []string
	for _, base := range bases {
		manifest, err := c.getJSON(ctx, base+"/lastModified")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.log.Warn("Manifest is not available", zap.String("base", base), zap.Error(err))
			continue
		}
		if keys = ManifestKeys(manifest); keys == nil {
			c.log.Warn("Manifest has unexpected shape", zap.String("base", base))
			continue
		}
		data.Base = base
		break
	}
	c.log.Debug("Using API base", zap.String("base", data.Base), zap.Int("manifest keys", len(keys)))

	groups := Discover(keys)
	for _, g := range fetchOrder {
		c.log.Debug("Discovered endpoints", zap.String("group", string(g)), zap.Int("count", len(groups[g])))
		for _, e := range groups[g] {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			url := data.Base + e.Path
			payload, err := c.getJSON(ctx, url)
			if err != nil {
				c.log.Debug("Endpoint skipped", zap.String("url", url), zap.Error(err))
				continue
			}
			items := Extract(g, payload)
			if len(items) == 0 {
				continue
			}
			data.Batches = append(data.Batches, Batch{Group: g, Source: InferSource(e.Path), Endpoint: e.Path, Items: items})
			c.log.Debug("Loaded records", zap.String("url", url), zap.Int("count", len(items)))
		}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, url string) (gjson.Result, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("response from '%s' is not valid JSON", url)
	}
	res := gjson.ParseBytes(body)
	if !res.IsObject() && !res.IsArray() {
		return gjson.Result{}, fmt.Errorf("response from '%s' is not a JSON document", url)
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.snapshot.Replaying() {
		return c.snapshot.Load(url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if token := c.cfg.Token.Reveal(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}
	if err := c.snapshot.Store(url, body); err != nil {
		c.log.Warn("Unable to record payload", zap.String("url", url), zap.Error(err))
	}
	return body, nil
}
