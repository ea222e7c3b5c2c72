package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

// FakeGeolocation makes getCurrentPosition answer with pos after delay.
// Calls are recorded under alias.
func (d *Driver) FakeGeolocation(alias string, pos Position, delay time.Duration) {
	d.t.Helper()
	d.installFakes(FakeSet{Geolocation: &GeolocationFake{
		Alias:    alias,
		Position: pos,
		DelayMS:  delayMS(delay),
	}})
}

// FakeClipboard makes navigator.clipboard.writeText a resolving recorder.
func (d *Driver) FakeClipboard(alias string) {
	d.t.Helper()
	d.installFakes(FakeSet{Clipboard: &ClipboardFake{Alias: alias}})
}

// SpyLocalStorage records localStorage.getItem and setItem under the two
// aliases while still reading and writing the real storage.
func (d *Driver) SpyLocalStorage(getAlias, setAlias string) {
	d.t.Helper()
	d.installFakes(FakeSet{LocalStorage: &StorageSpy{GetAlias: getAlias, SetAlias: setAlias}})
}

// installFakes registers set for every future document and, when a page is
// already loaded, installs it there as well.
func (d *Driver) installFakes(set FakeSet) {
	d.t.Helper()

	script, err := FakesScript(set)
	if err != nil {
		d.t.Fatalf("render fakes: %v", err)
	}
	if err := d.page.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
		d.t.Fatalf("add fakes init script: %v", err)
	}
	if d.page.URL() != "about:blank" {
		if _, err := d.page.Evaluate(script); err != nil {
			d.fail("install fakes on current page: %v", err)
		}
	}
}

// Calls returns the calls recorded under alias in the current document.
func (d *Driver) Calls(alias string) []Call {
	d.t.Helper()

	calls, err := d.readCalls(alias)
	if err != nil {
		d.fail("read calls for @%s: %v", alias, err)
	}
	return calls
}

func (d *Driver) readCalls(alias string) ([]Call, error) {
	raw, err := d.page.Evaluate(readCallsScript, alias)
	if err != nil {
		return nil, err
	}
	return decodeCalls(raw)
}

// ExpectCalled waits until alias has at least one call.
func (d *Driver) ExpectCalled(alias string) {
	d.t.Helper()
	d.eventually(fmt.Sprintf("@%s to have been called", alias), func(c *assert.CollectT) {
		calls, err := d.readCalls(alias)
		if assert.NoError(c, err, "read calls for @%s", alias) {
			assert.NotEmpty(c, calls, "@%s calls: %s", alias, describeCalls(calls))
		}
	})
}

// ExpectCalledTimes waits until alias has exactly n calls.
func (d *Driver) ExpectCalledTimes(alias string, n int) {
	d.t.Helper()
	d.eventually(fmt.Sprintf("@%s to have been called %d time(s)", alias, n), func(c *assert.CollectT) {
		calls, err := d.readCalls(alias)
		if assert.NoError(c, err, "read calls for @%s", alias) {
			assert.Len(c, calls, n, "@%s calls: %s", alias, describeCalls(calls))
		}
	})
}

// ExpectCalledWithMatch waits until some call to alias satisfies patterns
// (see MatchArgs).
func (d *Driver) ExpectCalledWithMatch(alias string, patterns ...any) {
	d.t.Helper()
	d.eventually(fmt.Sprintf("@%s to have been called with %v", alias, patterns), func(c *assert.CollectT) {
		calls, err := d.readCalls(alias)
		if !assert.NoError(c, err, "read calls for @%s", alias) {
			return
		}
		for _, call := range calls {
			if MatchArgs(call.Args, patterns...) {
				return
			}
		}
		c.Errorf("no call to @%s matched %v; calls: %s", alias, patterns, describeCalls(calls))
	})
}
