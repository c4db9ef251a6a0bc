// Package client talks to the HeartQuest API. It runs in the browser
// build, where net/http is backed by fetch, and in tests against
// httptest servers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kidandcat/heartquest/internal/proposal"
)

// Timeout bounds a single call made from the UI.
const Timeout = 30 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string   `json:"error"`
	Fields  []string `json:"fields"`
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	base string
	hc   *http.Client
	log  *zap.Logger

	mu    sync.RWMutex
	token string
}

// New returns a client for the API at base. An empty base means the page
// origin.
func New(base string, hc *http.Client, log *zap.Logger) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: strings.TrimRight(base, "/"), hc: hc, log: log}
}

// SetToken sets the creator bearer token sent on every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if t := c.Token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}
	return req, nil
}

// do sends req and decodes a JSON answer into out when out is non-nil.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func statusIs(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Resolve looks a proposal up by token. Unknown tokens map to
// proposal.ErrNotFound and malformed ones to proposal.ErrInvalidToken.
func (c *Client) Resolve(ctx context.Context, token string) (*proposal.Proposal, error) {
	if !proposal.ValidToken(proposal.NormalizeToken(token)) {
		return nil, proposal.ErrInvalidToken
	}
	var p proposal.Proposal
	err := c.doJSON(ctx, http.MethodGet, "/api/proposals/resolve?token="+url.QueryEscape(token), nil, &p)
	switch {
	case statusIs(err, http.StatusNotFound):
		return nil, proposal.ErrNotFound
	case statusIs(err, http.StatusBadRequest):
		return nil, proposal.ErrInvalidToken
	case err != nil:
		return nil, err
	}
	p.SortMemories()
	p.ApplyDefaults()
	return &p, nil
}

func (c *Client) SetCollected(ctx context.Context, memoryID string, collected bool) error {
	return c.doJSON(ctx, http.MethodPut, "/api/memories/"+url.PathEscape(memoryID)+"/collected",
		map[string]bool{"collected": collected}, nil)
}

// Generate asks the server for a narration line. The server falls back on
// its own, so an error here means the server itself was unreachable.
func (c *Client) Generate(ctx context.Context, caption, partnerName string) (string, error) {
	var out struct {
		Text     string `json:"text"`
		Fallback bool   `json:"fallback"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/api/narration",
		map[string]string{"caption": caption, "partner_name": partnerName}, &out)
	if err != nil {
		return "", err
	}
	if out.Fallback {
		c.log.Debug("narration served from fallback")
	}
	return out.Text, nil
}

// Speech fetches synthesized audio for text.
func (c *Client) Speech(ctx context.Context, text string) ([]byte, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/speech", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.fetch(req)
}

// Fetch downloads a media file. Relative URLs resolve against the API base.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "/") {
		rawURL = c.base + rawURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return c.fetch(req)
}

func (c *Client) fetch(req *http.Request) ([]byte, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}
