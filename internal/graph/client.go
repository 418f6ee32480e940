// Package graph is the resilient access layer for the Meta Graph API. Every
// tool call goes through Client, which resolves the caller's access token,
// throttles on reported usage, classifies vendor errors and retries the
// transient ones.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultVersion    = "v22.0"
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultTimeout    = 30 * time.Second

	accessTokenParam = "access_token"
)

// CredentialSource resolves the access token for the current call.
type CredentialSource interface {
	Resolve(ctx context.Context) (string, error)
}

// Doer sends HTTP requests. *http.Client implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CallRecord summarizes one logical call after it finished.
type CallRecord struct {
	Method     string
	Path       string
	StatusCode int
	Attempts   int
	ErrorKind  Kind
	Duration   time.Duration
}

// Observer is notified once per logical call.
type Observer interface {
	ObserveCall(ctx context.Context, rec CallRecord)
}

// Options configures a Client. Zero values fall back to the defaults above,
// except MaxRetries where zero means a single attempt.
type Options struct {
	BaseURL     string
	Version     string
	HTTPClient  Doer
	Credentials CredentialSource
	Usage       *UsageTracker
	MaxRetries  int
	BaseDelay   time.Duration
	Timeout     time.Duration
	Logger      *slog.Logger
	Observer    Observer
}

// Client is the Graph API facade used by the tool layer.
type Client struct {
	baseURL    string
	version    string
	http       Doer
	creds      CredentialSource
	usage      *UsageTracker
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	logger     *slog.Logger
	observer   Observer

	// test hooks
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
	now    func() time.Time
}

// NewClient returns a client with defaults applied.
func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		version:    strings.Trim(strings.TrimSpace(opts.Version), "/"),
		http:       opts.HTTPClient,
		creds:      opts.Credentials,
		usage:      opts.Usage,
		maxRetries: max(opts.MaxRetries, 0),
		baseDelay:  opts.BaseDelay,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		observer:   opts.Observer,
		sleep:      sleepContext,
		jitter:     rand.Float64,
		now:        time.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.usage == nil {
		c.usage = NewUsageTracker()
	}
	if c.baseDelay <= 0 {
		c.baseDelay = DefaultBaseDelay
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Usage exposes the tracker shared by every call of this client.
func (c *Client) Usage() *UsageTracker {
	return c.usage
}

// Get issues a GET with query parameters and decodes the body into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	raw, err := c.execute(ctx, &pendingRequest{method: http.MethodGet, path: path, query: params})
	return decodeInto(raw, err, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	raw, err := c.execute(ctx, &pendingRequest{
		method: http.MethodPost,
		path:   path,
		body: func(string) (io.Reader, string, error) {
			return bytes.NewReader(payload), "application/json", nil
		},
	})
	return decodeInto(raw, err, out)
}

// PostForm issues a POST with a URL-encoded form body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	encoded := form.Encode()
	raw, err := c.execute(ctx, &pendingRequest{
		method: http.MethodPost,
		path:   path,
		body: func(string) (io.Reader, string, error) {
			return strings.NewReader(encoded), "application/x-www-form-urlencoded", nil
		},
	})
	return decodeInto(raw, err, out)
}

// MultipartFile is one file part of a multipart upload.
type MultipartFile struct {
	Field    string
	Filename string
	Data     []byte
}

// MultipartForm is the body of a multipart upload.
type MultipartForm struct {
	Fields map[string]string
	Files  []MultipartFile
}

// PostMultipart issues a multipart POST. The access token travels as a form
// field instead of a query parameter.
func (c *Client) PostMultipart(ctx context.Context, path string, form *MultipartForm, out any) error {
	if form == nil {
		form = &MultipartForm{}
	}
	raw, err := c.execute(ctx, &pendingRequest{
		method:      http.MethodPost,
		path:        path,
		tokenInBody: true,
		body:        form.encode,
	})
	return decodeInto(raw, err, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	raw, err := c.execute(ctx, &pendingRequest{method: http.MethodDelete, path: path})
	return decodeInto(raw, err, out)
}

func (f *MultipartForm) encode(token string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.WriteField(accessTokenParam, token); err != nil {
		return nil, "", fmt.Errorf("write access token: %w", err)
	}
	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", file.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func decodeInto(raw json.RawMessage, err error, out any) error {
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// endpoint builds the request URL. Absolute URLs, such as paging links, are
// used as given.
func (c *Client) endpoint(path string, query url.Values) (string, error) {
	var u *url.URL
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		parsed, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("parse url: %w", err)
		}
		u = parsed
	} else {
		parsed, err := url.Parse(c.baseURL + "/" + c.version + "/" + strings.TrimLeft(path, "/"))
		if err != nil {
			return "", fmt.Errorf("parse url: %w", err)
		}
		u = parsed
	}

	merged := u.Query()
	for k, vs := range query {
		merged.Del(k)
		for _, v := range vs {
			merged.Add(k, v)
		}
	}
	u.RawQuery = merged.Encode()
	return u.String(), nil
}

// transportError turns a failed round trip into a classified error without
// echoing the request URL, which carries the access token.
func transportError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindTransient, Message: "request failed: " + err.Error(), Err: err}
}
