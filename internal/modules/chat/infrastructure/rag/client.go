package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 2048

// UpstreamError is a non-2xx answer from the RAG service.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Status)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

type chatPayload struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type ChatReply struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Client talks to the Python RAG service.
type Client struct {
	baseURL string
	client  *http.Client
	// streaming answers have no deadline; they end with the request context
	stream *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	req, err := c.newJSONRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Chat asks for a complete answer.
func (c *Client) Chat(ctx context.Context, message, sessionID string) (*ChatReply, error) {
	var reply ChatReply
	if err := c.doJSON(ctx, http.MethodPost, "/chat", chatPayload{Message: message, SessionID: sessionID}, &reply); err != nil {
		return nil, err
	}
	if reply.Sources == nil {
		reply.Sources = []string{}
	}
	return &reply, nil
}

func (c *Client) ClearMemory(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	err := c.doJSON(ctx, http.MethodPost, "/clear-memory", map[string]string{"session_id": sessionID}, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

// Stream is an open streaming answer. The caller must Close it.
type Stream struct {
	body io.ReadCloser
	dec  *Decoder
}

// ChatStream opens POST /chat/streaming. Cancelling ctx aborts the upstream request.
func (c *Client) ChatStream(ctx context.Context, message, sessionID string) (*Stream, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/chat/streaming", chatPayload{Message: message, SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request /chat/streaming: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return NewStream(resp.Body), nil
}

// NewStream reads frames from an event-stream body.
func NewStream(body io.ReadCloser) *Stream {
	return &Stream{body: body, dec: NewDecoder(body)}
}

// Next returns the next frame. Errors wrapping ErrMalformedFrame are
// recoverable; io.EOF means the upstream closed the body.
func (s *Stream) Next() (Frame, error) {
	data, err := s.dec.Next()
	if err != nil {
		return Frame{}, err
	}
	return ParseFrame(data)
}

func (s *Stream) Close() error {
	return s.body.Close()
}

// IsMalformed reports whether err only concerns a single bad frame.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedFrame)
}
