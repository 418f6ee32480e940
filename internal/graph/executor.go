package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// pendingRequest describes one logical call and its retry bookkeeping.
type pendingRequest struct {
	method string
	path   string
	query  url.Values
	// body is rebuilt on every attempt because multipart bodies embed the token.
	body        func(token string) (io.Reader, string, error)
	tokenInBody bool

	attempts   int
	lastErr    error
	statusCode int
}

// execute runs the resolve, throttle, send, classify loop for one call.
func (c *Client) execute(ctx context.Context, req *pendingRequest) (raw json.RawMessage, err error) {
	start := c.now()
	defer func() {
		c.observe(ctx, req, err, c.now().Sub(start))
	}()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		token, err := c.resolveToken(ctx)
		if err != nil {
			return nil, err
		}

		if delay := c.usage.Delay(); delay > 0 {
			c.logger.Debug("throttling graph request",
				"path", req.path,
				"usage", c.usage.CurrentUsage(),
				"delay_ms", delay.Milliseconds())
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		req.attempts++
		body, err := c.send(ctx, req, token)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !IsRetryable(err) {
			return nil, err
		}
		req.lastErr = err

		if attempt == c.maxRetries {
			break
		}
		wait := c.backoff(attempt)
		c.logger.Warn("retrying graph request",
			"method", req.method,
			"path", req.path,
			"attempt", attempt+1,
			"kind", KindOf(err),
			"wait_ms", wait.Milliseconds())
		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}

	if req.lastErr == nil {
		return nil, fmt.Errorf("%w: request failed", ErrRetriesExhausted)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, req.attempts, req.lastErr)
}

func (c *Client) resolveToken(ctx context.Context) (string, error) {
	if c.creds == nil {
		return "", &Error{Kind: KindNoCredential, Message: "no credential source configured"}
	}
	token, err := c.creds.Resolve(ctx)
	if err != nil {
		return "", &Error{Kind: KindNoCredential, Message: err.Error(), Err: err}
	}
	if token == "" {
		return "", &Error{Kind: KindNoCredential, Message: "resolved access token is empty"}
	}
	return token, nil
}

// maxBackoff caps the exponential wait before jitter.
const maxBackoff = 10 * time.Minute

// backoff is baseDelay * 2^attempt, capped at maxBackoff, plus up to 10% jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseDelay
	for i := 0; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	d = min(d, maxBackoff)
	return d + time.Duration(float64(d)*0.1*c.jitter())
}

func (c *Client) send(ctx context.Context, req *pendingRequest, token string) (json.RawMessage, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := url.Values{}
	for k, vs := range req.query {
		query[k] = append([]string(nil), vs...)
	}
	if !req.tokenInBody {
		query.Set(accessTokenParam, token)
	}
	endpoint, err := c.endpoint(req.path, query)
	if err != nil {
		return nil, &Error{Kind: KindInvalidParameter, Message: err.Error(), Err: err}
	}

	var (
		body        io.Reader
		contentType string
	)
	if req.body != nil {
		body, contentType, err = req.body(token)
		if err != nil {
			return nil, fmt.Errorf("build request body: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", transportError(err))
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	c.usage.Update(resp.Header)
	req.statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	var vendor vendorErrorBody
	if json.Unmarshal(respBody, &vendor) == nil && vendor.Error != nil {
		classified := Classify(vendor.Error)
		classified.StatusCode = resp.StatusCode
		return nil, classified
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ClassifyStatus(resp.StatusCode, respBody)
	}

	if len(respBody) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(respBody) {
		return nil, &Error{Kind: KindUnknown, Message: "response body is not valid JSON", StatusCode: resp.StatusCode}
	}
	return json.RawMessage(respBody), nil
}

func (c *Client) observe(ctx context.Context, req *pendingRequest, err error, elapsed time.Duration) {
	if c.observer == nil {
		return
	}
	rec := CallRecord{
		Method:     req.method,
		Path:       redactPath(req.path),
		StatusCode: req.statusCode,
		Attempts:   req.attempts,
		Duration:   elapsed,
	}
	if err != nil {
		rec.ErrorKind = KindOf(err)
		if rec.ErrorKind == "" && errors.Is(err, context.Canceled) {
			rec.ErrorKind = "CANCELED"
		}
	}
	c.observer.ObserveCall(context.WithoutCancel(ctx), rec)
}

// redactPath drops the query of absolute paging links, which may embed a token.
func redactPath(path string) string {
	u, err := url.Parse(path)
	if err != nil || u.RawQuery == "" {
		return path
	}
	u.RawQuery = ""
	return u.String()
}
