// Package client talks to the junkfactory control surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"junkfactory/pkg/log"
	"junkfactory/pkg/models"
)

// Client is a retrying HTTP client for one server.
type Client struct {
	baseURL        string
	http           *retryablehttp.Client
	requestTimeout time.Duration
}

// New creates a client for the server at baseURL.
func New(baseURL string, retryMax int, retryWaitMin, retryWaitMax, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           CreateRetryableClient(retryMax, retryWaitMin, retryWaitMax),
		requestTimeout: requestTimeout,
	}
}

// CreateRetryableClient creates a client that retries connection failures only.
func CreateRetryableClient(retryMax int, retryWaitMin, retryWaitMax time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.Logger = nil
	client.CheckRetry = customRetryPolicy
	return client
}

// customRetryPolicy retries when no response was received. Any HTTP status,
// including 5xx, is returned to the caller as is.
func customRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil {
		return false, nil
	}
	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the last error itself
	}
	return false, nil
}

// Submit starts an allocation and returns its id.
func (c *Client) Submit(ctx context.Context, request models.SubmitRequest) (string, error) {
	var response models.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/allocations", request, http.StatusAccepted, &response); err != nil {
		return "", err
	}
	return response.ID, nil
}

// Poll drains the progress queue of the server.
func (c *Client) Poll(ctx context.Context) ([]models.ProgressEvent, error) {
	var response models.ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/progress", nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return response.Events, nil
}

// Status returns the engine state.
func (c *Client) Status(ctx context.Context) (*models.StatusResponse, error) {
	var response models.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// CheckPath runs the server side path guard on path.
func (c *Client) CheckPath(ctx context.Context, path string) (*models.PathCheckResponse, error) {
	var response models.PathCheckResponse
	query := "/paths/check?path=" + url.QueryEscape(path)
	if err := c.do(ctx, http.MethodGet, query, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Volume returns the disk usage of the volume holding path.
func (c *Client) Volume(ctx context.Context, path string) (*models.DiskUsage, error) {
	var response models.DiskUsage
	if err := c.do(ctx, http.MethodGet, "/volume?path="+url.QueryEscape(path), nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// History lists finished allocations, newest first. A non-positive limit uses
// the server default.
func (c *Client) History(ctx context.Context, limit int) ([]models.AllocationRecord, error) {
	path := "/allocations"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var response models.HistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &response); err != nil {
		return nil, err
	}
	return response.Allocations, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("path", path).Msg("Failed to close response body")
		}
	}()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != want {
		var errResponse models.ErrorResponse
		_ = json.Unmarshal(buf.Bytes(), &errResponse)
		return &StatusError{StatusCode: resp.StatusCode, Message: errResponse.Error}
	}

	if err := json.Unmarshal(buf.Bytes(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
