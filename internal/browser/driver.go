package browser

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"

	"github.com/kuitang/e2e-suites/fixtures"
	"github.com/kuitang/e2e-suites/internal/artifacts"
	"github.com/kuitang/e2e-suites/internal/logutil"
	"github.com/kuitang/e2e-suites/internal/urlutil"
)

const (
	pollInterval   = 50 * time.Millisecond
	previewMaxSize = 500
)

// Driver runs commands against one page in its own browser context.
// Every query and assertion retries until the configured command timeout.
type Driver struct {
	t       *testing.T
	env     *Env
	baseURL string
	context playwright.BrowserContext
	page    playwright.Page
	ctx     context.Context
	timeout time.Duration
	log     *slog.Logger
}

func (d *Driver) url(path string) string {
	if path == "" {
		path = "/"
	}
	return urlutil.BuildAbsolute(d.baseURL, path)
}

// Visit navigates to path (relative to the base URL) and waits for load.
func (d *Driver) Visit(path string) {
	d.t.Helper()

	target := d.url(path)
	if _, err := d.page.Goto(target, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		d.fail("visit %s: %v", target, err)
	}
	d.log.Debug("visit", "url", target)
}

// Back goes one entry back in history.
func (d *Driver) Back() {
	d.t.Helper()
	if _, err := d.page.GoBack(); err != nil {
		d.fail("go back: %v", err)
	}
}

// Reload reloads the current page. Installed fakes survive.
func (d *Driver) Reload() {
	d.t.Helper()
	if _, err := d.page.Reload(); err != nil {
		d.fail("reload: %v", err)
	}
}

// ByID returns the element carrying the configured test-id attribute.
// Like every locator, it is resolved lazily and retried by the action or
// assertion that uses it.
func (d *Driver) ByID(id string) playwright.Locator {
	return d.page.Locator(TestIDSelector(d.env.Config.TestIDAttribute, id))
}

// Get returns a locator for an arbitrary selector.
func (d *Driver) Get(selector string) playwright.Locator {
	return d.page.Locator(selector)
}

// Contains returns the first element whose text contains text.
func (d *Driver) Contains(text string) playwright.Locator {
	return d.page.GetByText(text).First()
}

// Parent returns the parent element of loc.
func (d *Driver) Parent(loc playwright.Locator) playwright.Locator {
	return loc.Locator("xpath=..")
}

// Type types text into loc. Key names in braces ({enter}, {tab}, {esc},
// {backspace}) are pressed; {{} types a literal brace.
func (d *Driver) Type(loc playwright.Locator, text string) {
	d.t.Helper()

	steps, err := ParseKeys(text)
	if err != nil {
		d.t.Fatalf("type: %v", err)
	}
	for _, step := range steps {
		if step.Key != "" {
			err = loc.Press(step.Key)
		} else {
			err = loc.PressSequentially(step.Text)
		}
		if err != nil {
			d.fail("type %q: %v", text, err)
		}
	}
}

// Click clicks loc once it is visible and enabled.
func (d *Driver) Click(loc playwright.Locator) {
	d.t.Helper()
	if err := loc.Click(); err != nil {
		d.fail("click: %v", err)
	}
}

// Focus focuses loc.
func (d *Driver) Focus(loc playwright.Locator) {
	d.t.Helper()
	if err := loc.Focus(); err != nil {
		d.fail("focus: %v", err)
	}
}

// Blur removes focus from loc.
func (d *Driver) Blur(loc playwright.Locator) {
	d.t.Helper()
	if err := loc.Blur(); err != nil {
		d.fail("blur: %v", err)
	}
}

// SubmitForm clicks the contact form's submit button. The click is forced
// because an implicit {enter} submit may already have disabled it.
func (d *Driver) SubmitForm() {
	d.t.Helper()
	if err := d.ByID("contact-btn-submit").Click(playwright.LocatorClickOptions{
		Force: playwright.Bool(true),
	}); err != nil {
		d.fail("submit form: %v", err)
	}
}

// Login signs in with the configured credentials.
func (d *Driver) Login() {
	d.t.Helper()
	d.LoginAs(d.env.Config.LoginEmail, d.env.Config.LoginPassword)
}

// LoginAs drives the /login form and waits for the redirect to /takeaways.
func (d *Driver) LoginAs(email, password string) {
	d.t.Helper()

	d.Visit("/login")
	emailInput := d.ByID("auth-email")
	d.Click(emailInput)
	d.Type(emailInput, email)
	d.Type(d.ByID("auth-password"), password)
	d.Click(d.ByID("auth-submit"))
	d.ExpectPathname("/takeaways")
	d.log.Debug("logged_in", "email", email)
}

// Pathname returns the path of the current page URL.
func (d *Driver) Pathname() string {
	return urlutil.Pathname(d.page.URL())
}

// ExpectPathname waits until the current path equals want.
func (d *Driver) ExpectPathname(want string) {
	d.t.Helper()
	d.eventually(fmt.Sprintf("pathname to be %q", want), func(c *assert.CollectT) {
		assert.Equal(c, want, d.Pathname(), "pathname")
	})
}

// Cookie returns the named cookie of the current context, if set.
func (d *Driver) Cookie(name string) (playwright.Cookie, bool) {
	d.t.Helper()

	c, ok, err := d.cookie(name)
	if err != nil {
		d.fail("read cookies: %v", err)
	}
	return c, ok
}

func (d *Driver) cookie(name string) (playwright.Cookie, bool, error) {
	cookies, err := d.context.Cookies()
	if err != nil {
		return playwright.Cookie{}, false, err
	}
	for _, c := range cookies {
		if c.Name == name {
			return c, true, nil
		}
	}
	return playwright.Cookie{}, false, nil
}

// ExpectCookie waits until the named cookie has a non-empty value (set) or
// is empty or absent (!set).
func (d *Driver) ExpectCookie(name string, set bool) {
	d.t.Helper()

	want := "empty or absent"
	if set {
		want = "non-empty"
	}
	d.eventually(fmt.Sprintf("cookie %s to be %s", name, want), func(c *assert.CollectT) {
		cookie, ok, err := d.cookie(name)
		if !assert.NoError(c, err, "read cookies") {
			return
		}
		if set {
			assert.True(c, ok, "cookie %s absent", name)
			assert.NotEmpty(c, cookie.Value, "cookie %s value", name)
		} else if ok {
			assert.Empty(c, cookie.Value, "cookie %s value", name)
		}
	})
}

// ExpectSessionCookie checks the configured session cookie.
func (d *Driver) ExpectSessionCookie(set bool) {
	d.t.Helper()
	d.ExpectCookie(d.env.Config.SessionCookie, set)
}

// Fixture decodes the named JSON fixture into v.
func (d *Driver) Fixture(name string, v any) {
	d.t.Helper()
	if err := fixtures.Decode(d.env.Config.FixturesDir, name, v); err != nil {
		d.t.Fatalf("fixture %s: %v", name, err)
	}
}

// Expect returns Playwright assertions bound to the command timeout.
func (d *Driver) Expect() playwright.PlaywrightAssertions {
	return playwright.NewPlaywrightAssertions(d.env.Config.CommandTimeoutMS())
}

// Must fails the test with page context when an assertion returned err.
func (d *Driver) Must(err error, what string) {
	d.t.Helper()
	if err != nil {
		d.fail("%s: %v", what, err)
	}
}

// eventually retries cond until it collects no failures or the command
// timeout passes. cond runs on another goroutine, so it reports through c
// and must not call d.fail or t.Fatal.
func (d *Driver) eventually(what string, cond func(c *assert.CollectT)) {
	d.t.Helper()

	if !assert.EventuallyWithT(d.t, cond, d.timeout, pollInterval, "waiting for %s", what) {
		d.fail("timed out after %s waiting for %s", d.timeout, what)
	}
}

func (d *Driver) fail(format string, args ...any) {
	d.t.Helper()

	title, _ := d.page.Title()
	content, _ := d.page.Content()
	d.t.Logf("Current URL: %s", d.page.URL())
	d.t.Logf("Current title: %s", title)
	d.t.Logf("Content preview: %s", logutil.TruncateForLog(content, previewMaxSize))
	d.t.Fatalf(format, args...)
}

func (d *Driver) saveArtifacts() {
	ctx := context.WithoutCancel(d.ctx)
	now := time.Now()

	if shot, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	}); err == nil {
		d.putArtifact(ctx, artifacts.Key(d.t.Name(), "screenshot", "png", now), shot, "image/png")
	} else {
		d.log.Warn("screenshot_failed", "error", err)
	}

	if html, err := d.page.Content(); err == nil {
		d.putArtifact(ctx, artifacts.Key(d.t.Name(), "dom", "html", now), []byte(html), "text/html; charset=utf-8")
	}
}

func (d *Driver) putArtifact(ctx context.Context, key string, data []byte, contentType string) {
	loc, err := d.env.artifacts.Put(ctx, key, data, contentType)
	if err != nil {
		d.log.Warn("artifact_save_failed", "key", key, "error", err)
		return
	}
	d.t.Logf("Saved %s", loc)
}
