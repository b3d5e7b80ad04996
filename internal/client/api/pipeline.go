package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Amawers/idmsystem-sub001/internal/logging"
)

// TokenSource supplies the current access token; "" means no session.
type TokenSource interface {
	AccessToken() string
}

// Refresher deduplicates token refreshes; Refresh reports whether a valid
// access token is in place afterwards. It never returns an error so the
// original request's failure is what callers ultimately see.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Options controls a single pipeline request.
//
// The zero value is a GET with auth attached and the single
// refresh-and-retry on 401 enabled.
type Options struct {
	// Method defaults to GET.
	Method string

	// Body may be nil, []byte, io.Reader, string, or any JSON-encodable
	// value. Bytes and readers pass through untouched; strings default to
	// text/plain; everything else is JSON-encoded with application/json.
	// An explicitly set Content-Type header always wins.
	Body any

	// Header entries are copied onto the request.
	Header http.Header

	// SkipAuth leaves the Authorization header off entirely.
	SkipAuth bool

	// DisableAuthRetry turns off the refresh-and-retry on 401. The retry
	// itself always runs with this forced on, bounding it to one attempt.
	DisableAuthRetry bool
}

// Pipeline executes every HTTP interaction with the backend: URL
// resolution, auth attachment, body serialization, envelope unwrapping
// and the single transparent refresh-and-retry after a 401.
type Pipeline struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	refresher Refresher
	log       logging.Logger
}

// NewPipeline builds a pipeline rooted at baseURL. A zero timeout leaves
// the transport without a deadline; cancellation beyond that is the
// caller's context.
func NewPipeline(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *Pipeline {
	return &Pipeline{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log,
	}
}

// SetRefresher wires the refresh coordinator in after construction; the
// coordinator itself issues its refresh call through this same pipeline.
func (p *Pipeline) SetRefresher(r Refresher) {
	p.refresher = r
}

// BaseURL returns the configured root of all relative request paths.
func (p *Pipeline) BaseURL() string {
	return p.baseURL
}

// resolveURL builds the absolute request URL: already-absolute paths pass
// through, everything else is joined onto the base with exactly one slash.
func (p *Pipeline) resolveURL(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	if strings.HasPrefix(path, "/") {
		return p.baseURL + path
	}
	return p.baseURL + "/" + path
}

// encodeBody turns the Options body into replayable bytes plus the default
// content type ("" when the payload dictates none).
func encodeBody(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read request body: %w", err)
		}
		return data, "", nil
	case string:
		return []byte(b), "text/plain", nil
	case json.RawMessage:
		return b, "application/json", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return data, "application/json", nil
	}
}

// Do executes one request and returns the unwrapped response.
//
// A 401 on an authenticated request triggers exactly one coordinated token
// refresh; when the refresh succeeds the identical request is re-issued
// once. Transport failures and non-2xx statuses (after that retry) are
// returned as errors; see StatusError.
func (p *Pipeline) Do(ctx context.Context, path string, opts Options) (*Response, error) {
	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}
	return p.do(ctx, path, opts, body, contentType, !opts.DisableAuthRetry)
}

func (p *Pipeline) do(ctx context.Context, path string, opts Options, body []byte, contentType string, allowRetry bool) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := p.resolveURL(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request %s %s: %w", method, url, err)
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	if !opts.SkipAuth {
		if token := p.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, url, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !opts.SkipAuth && allowRetry && p.refresher != nil {
		if p.refresher.Refresh(ctx) {
			p.log.Debug(ctx, "retrying request after token refresh", "method", method, "path", path)
			return p.do(ctx, path, opts, body, contentType, false)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp, respBody)
	}

	return parseBody(resp, respBody)
}

func newStatusError(resp *http.Response, body []byte) *StatusError {
	e := &StatusError{Status: resp.StatusCode}
	if len(body) == 0 {
		e.Message = resp.Status
		return e
	}
	if isJSONContent(resp) && json.Valid(body) {
		e.Detail = json.RawMessage(body)
		e.Message = rawMessageText(e.Detail)
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}

// Rpc invokes a named remote procedure with the given params, POSTing them
// to the per-function endpoint. Failures propagate as the usual pipeline
// error family.
func (p *Pipeline) Rpc(ctx context.Context, name string, params any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	resp, err := p.Do(ctx, "/rpc/"+name, Options{Method: http.MethodPost, Body: params})
	if err != nil {
		return nil, err
	}
	return resp.Data, nil
}
