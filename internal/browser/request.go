package browser

import (
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/kuitang/e2e-suites/internal/logutil"
)

// RequestOptions shapes an API call made with Request. Form is sent as
// application/x-www-form-urlencoded and takes precedence over JSON.
type RequestOptions struct {
	Form    map[string]string
	JSON    any
	Headers map[string]string
}

// APIResponse is the status and body of a Request call.
type APIResponse struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// Request calls the app directly, outside the page, sharing the browser
// context's cookies. Non-2xx statuses are returned, not failed on.
func (d *Driver) Request(method, path string, opts RequestOptions) APIResponse {
	d.t.Helper()

	fetch := playwright.APIRequestContextFetchOptions{
		Method:           playwright.String(strings.ToUpper(method)),
		Headers:          opts.Headers,
		FailOnStatusCode: playwright.Bool(false),
	}
	switch {
	case opts.Form != nil:
		form := make(map[string]interface{}, len(opts.Form))
		for k, v := range opts.Form {
			form[k] = v
		}
		fetch.Form = form
	case opts.JSON != nil:
		fetch.Data = opts.JSON
	}

	target := d.url(path)
	resp, err := d.context.Request().Fetch(target, fetch)
	if err != nil {
		d.t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Dispose()

	body, err := resp.Body()
	if err != nil {
		d.t.Fatalf("read %s %s response: %v", method, target, err)
	}
	out := APIResponse{
		Status:  resp.Status(),
		Headers: resp.Headers(),
		Body:    body,
	}
	d.log.Debug("api_request",
		"method", method,
		"url", target,
		"status", out.Status,
		"body", logutil.FormatBodyForLog(out.Headers["content-type"], body, logBodyMaxBytes),
	)
	return out
}
