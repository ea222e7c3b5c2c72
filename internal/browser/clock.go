package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// clockEpoch is where the virtual clock starts.
var clockEpoch = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

// InstallClock replaces the page's timers and Date with a paused virtual
// clock. Call it before Visit; only Tick moves time afterwards.
func (d *Driver) InstallClock() {
	d.t.Helper()

	clock := d.page.Clock()
	if err := clock.Install(playwright.ClockInstallOptions{
		Time: int(clockEpoch.UnixMilli()),
	}); err != nil {
		d.t.Fatalf("install clock: %v", err)
	}
	// Pausing slightly ahead of the install time keeps the fast-forward
	// from moving backwards.
	if err := clock.PauseAt(int(clockEpoch.Add(time.Second).UnixMilli())); err != nil {
		d.t.Fatalf("pause clock: %v", err)
	}
}

// Tick advances the virtual clock by dur, firing every timer that falls due.
func (d *Driver) Tick(dur time.Duration) {
	d.t.Helper()
	if err := d.page.Clock().RunFor(int(dur.Milliseconds())); err != nil {
		d.fail("tick %s: %v", dur, err)
	}
	d.log.Debug("clock_tick", "ms", dur.Milliseconds())
}
