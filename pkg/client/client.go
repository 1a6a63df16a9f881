// Package client talks to a remote baseline server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/maxrand/go/pkg/api"
)

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Baseline(ctx context.Context, req api.BaselineRequest) (api.BaselineResponse, error) {
	var out api.BaselineResponse
	err := c.post(ctx, "/api/v1/baseline", req, &out)
	return out, err
}

func (c *Client) PValue(ctx context.Context, req api.PValueRequest) (api.PValueResponse, error) {
	var out api.PValueResponse
	err := c.post(ctx, "/api/v1/pvalue", req, &out)
	return out, err
}

func (c *Client) PMF(ctx context.Context, req api.PointRequest) (api.PointResponse, error) {
	var out api.PointResponse
	err := c.post(ctx, "/api/v1/pmf", req, &out)
	return out, err
}

func (c *Client) CDF(ctx context.Context, req api.PointRequest) (api.PointResponse, error) {
	var out api.PointResponse
	err := c.post(ctx, "/api/v1/cdf", req, &out)
	return out, err
}

func (c *Client) Sweep(ctx context.Context, req api.SweepRequest) (api.SweepResponse, error) {
	var out api.SweepResponse
	err := c.post(ctx, "/api/v1/sweep", req, &out)
	return out, err
}

func (c *Client) Evaluate(ctx context.Context, req api.EvaluateRequest) (api.EvaluateResponse, error) {
	var out api.EvaluateResponse
	err := c.post(ctx, "/api/v1/evaluate", req, &out)
	return out, err
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	j, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(j))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var em struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&em)
		if em.Error != "" {
			return fmt.Errorf("server: %s", em.Error)
		}
		return errors.New("server_http_" + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
