package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Coords is the coordinates part of a geolocation position.
type Coords struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Position is what a faked getCurrentPosition hands to its success callback.
// It has the shape of fixtures/user-location.json.
type Position struct {
	Coords    Coords `json:"coords"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// GeolocationFake replaces navigator.geolocation.getCurrentPosition. The
// success callback runs through setTimeout(DelayMS), so an installed clock
// controls it.
type GeolocationFake struct {
	Alias    string   `json:"alias"`
	Position Position `json:"position"`
	DelayMS  int64    `json:"delayMs"`
}

// ClipboardFake replaces navigator.clipboard.writeText with a recorder whose
// promise resolves immediately.
type ClipboardFake struct {
	Alias string `json:"alias"`
}

// StorageSpy records getItem/setItem on window.localStorage and calls
// through to the real storage.
type StorageSpy struct {
	GetAlias string `json:"getAlias"`
	SetAlias string `json:"setAlias"`
}

// FakeSet is the set of browser API fakes one script installs.
type FakeSet struct {
	Geolocation  *GeolocationFake `json:"geolocation,omitempty"`
	Clipboard    *ClipboardFake   `json:"clipboard,omitempty"`
	LocalStorage *StorageSpy      `json:"localStorage,omitempty"`
}

// Call is one recorded invocation of a fake or spy.
type Call struct {
	Args []any `json:"args"`
}

// callsGlobal is the window property the fakes record into.
const callsGlobal = "__suiteCalls"

const fakesScriptTemplate = `(() => {
  const cfg = %s;
  const calls = window.%[2]s = window.%[2]s || {};
  const installed = window.__suiteFakes = window.__suiteFakes || {};
  const plain = (v) => {
    if (typeof v === 'function') return '[function]';
    if (v === undefined) return null;
    try { return JSON.parse(JSON.stringify(v)); } catch (e) { return String(v); }
  };
  const record = (alias, args) => {
    (calls[alias] = calls[alias] || []).push({ args: Array.from(args, plain) });
  };

  if (cfg.geolocation && !installed.geolocation && navigator.geolocation) {
    installed.geolocation = true;
    const g = cfg.geolocation;
    navigator.geolocation.getCurrentPosition = function (success) {
      record(g.alias, arguments);
      setTimeout(() => success(g.position), g.delayMs);
    };
  }

  if (cfg.clipboard && !installed.clipboard) {
    installed.clipboard = true;
    const alias = cfg.clipboard.alias;
    const writeText = function (text) {
      record(alias, arguments);
      return Promise.resolve();
    };
    if (navigator.clipboard) {
      navigator.clipboard.writeText = writeText;
    } else {
      Object.defineProperty(navigator, 'clipboard', { value: { writeText }, configurable: true });
    }
  }

  if (cfg.localStorage && !installed.localStorage) {
    installed.localStorage = true;
    const s = cfg.localStorage;
    const proto = Storage.prototype;
    const getItem = proto.getItem;
    const setItem = proto.setItem;
    proto.getItem = function () {
      if (this === window.localStorage) record(s.getAlias, arguments);
      return getItem.apply(this, arguments);
    };
    proto.setItem = function () {
      if (this === window.localStorage) record(s.setAlias, arguments);
      return setItem.apply(this, arguments);
    };
  }
})()`

// FakesScript renders the page script that installs set. It is safe to run
// more than once in the same window.
func FakesScript(set FakeSet) (string, error) {
	cfg, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("encode fakes: %w", err)
	}
	return fmt.Sprintf(fakesScriptTemplate, cfg, callsGlobal), nil
}

const readCallsScript = `(alias) => (window.` + callsGlobal + ` && window.` + callsGlobal + `[alias]) || []`

func decodeCalls(raw any) ([]Call, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode recorded calls: %w", err)
	}
	var calls []Call
	if err := json.Unmarshal(data, &calls); err != nil {
		return nil, fmt.Errorf("decode recorded calls: %w", err)
	}
	return calls, nil
}

func describeCalls(calls []Call) string {
	if len(calls) == 0 {
		return "no calls"
	}
	parts := make([]string, len(calls))
	for i, c := range calls {
		data, _ := json.Marshal(c.Args)
		parts[i] = string(data)
	}
	return fmt.Sprintf("%d call(s): %s", len(calls), strings.Join(parts, ", "))
}

func delayMS(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}
