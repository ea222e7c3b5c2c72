package browser

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/e2e-suites/internal/logutil"
)

const (
	interceptBuffer  = 64
	logBodyMaxBytes  = 2048
	defaultReplyType = "text/plain; charset=utf-8"
	jsonReplyType    = "application/json"
)

// Reply is a static response served instead of the real backend.
// A string or []byte Body is sent as is; any other value is JSON-encoded.
// Status defaults to 200.
type Reply struct {
	Status      int
	Body        any
	ContentType string
	Headers     map[string]string
}

// JSONReply answers with v encoded as JSON.
func JSONReply(v any) *Reply {
	return &Reply{Body: v, ContentType: jsonReplyType}
}

// TextReply answers with a plain text body.
func TextReply(body string) *Reply {
	return &Reply{Body: body}
}

func (r *Reply) render() (status int, contentType, body string, err error) {
	status = r.Status
	if status == 0 {
		status = http.StatusOK
	}
	contentType = r.ContentType
	switch b := r.Body.(type) {
	case nil:
	case string:
		body = b
	case []byte:
		body = string(b)
	default:
		data, mErr := json.Marshal(b)
		if mErr != nil {
			return 0, "", "", fmt.Errorf("encode reply body: %w", mErr)
		}
		body = string(data)
		if contentType == "" {
			contentType = jsonReplyType
		}
	}
	if contentType == "" {
		contentType = defaultReplyType
	}
	return status, contentType, body, nil
}

// InterceptedRequest is what a route captured from the page.
type InterceptedRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
	At      time.Time
}

// Intercept captures requests matching a method and glob pattern. With a
// reply it answers them; without one they pass through to the network.
type Intercept struct {
	d       *Driver
	method  string
	pattern string
	reply   *Reply
	seen    chan InterceptedRequest
	count   atomic.Int64
}

// Intercept registers a route for method (empty for any) and pattern.
// Register intercepts before the navigation that triggers the requests.
func (d *Driver) Intercept(method, pattern string, reply *Reply) *Intercept {
	d.t.Helper()

	re, err := GlobMatcher(pattern)
	if err != nil {
		d.t.Fatalf("intercept %s %s: %v", method, pattern, err)
	}
	ic := &Intercept{
		d:       d,
		method:  strings.ToUpper(method),
		pattern: pattern,
		reply:   reply,
		seen:    make(chan InterceptedRequest, interceptBuffer),
	}
	if err := d.page.Route(re, ic.handle); err != nil {
		d.t.Fatalf("install route %s %s: %v", method, pattern, err)
	}
	return ic
}

// handle runs on Playwright's dispatch goroutine.
func (ic *Intercept) handle(route playwright.Route) {
	req := route.Request()
	if ic.method != "" && req.Method() != ic.method {
		_ = route.Fallback()
		return
	}

	body, _ := req.PostData()
	headers := req.Headers()
	captured := InterceptedRequest{
		Method:  req.Method(),
		URL:     req.URL(),
		Headers: headers,
		Body:    body,
		At:      time.Now(),
	}
	ic.count.Add(1)
	select {
	case ic.seen <- captured:
	default:
		ic.d.log.Warn("intercept_buffer_full", "pattern", ic.pattern)
	}

	ic.d.log.Debug("intercepted",
		"method", captured.Method,
		"url", captured.URL,
		"headers", logutil.FormatHeadersForLog(headers),
		"body", logutil.FormatBodyForLog(headers["content-type"], []byte(body), logBodyMaxBytes),
	)

	if ic.reply == nil {
		_ = route.Continue()
		return
	}
	status, contentType, replyBody, err := ic.reply.render()
	if err != nil {
		ic.d.log.Error("intercept_reply_failed", "pattern", ic.pattern, "error", err)
		_ = route.Abort()
		return
	}
	_ = route.Fulfill(playwright.RouteFulfillOptions{
		Status:      playwright.Int(status),
		ContentType: playwright.String(contentType),
		Headers:     ic.reply.Headers,
		Body:        replyBody,
	})
}

// Wait returns the next captured request, failing the test if none arrives
// within the command timeout.
func (ic *Intercept) Wait() InterceptedRequest {
	ic.d.t.Helper()

	timer := time.NewTimer(ic.d.timeout)
	defer timer.Stop()
	select {
	case req := <-ic.seen:
		return req
	case <-timer.C:
		ic.d.fail("timed out after %s waiting for %s %s", ic.d.timeout, ic.method, ic.pattern)
		return InterceptedRequest{}
	}
}

// Count returns how many matching requests have been captured so far.
func (ic *Intercept) Count() int {
	return int(ic.count.Load())
}
