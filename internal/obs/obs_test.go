package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestFrom_IncludesCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	ctx := WithRun(context.Background(), Correlation{RunID: "run-1", Suite: "contact"})
	ctx = WithRun(ctx, Correlation{Test: "TestContact_Submit"})
	From(ctx).Info("suite_event", "step", "visit")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for key, want := range map[string]string{
		"run_id": "run-1",
		"suite":  "contact",
		"test":   "TestContact_Submit",
		"step":   "visit",
		"msg":    "suite_event",
	} {
		if got, _ := line[key].(string); got != want {
			t.Fatalf("field %q = %q, want %q", key, got, want)
		}
	}
	ts, _ := line["time"].(string)
	if !strings.HasSuffix(ts, "Z") {
		t.Fatalf("time should be UTC RFC3339, got %q", ts)
	}
}

func TestFrom_NoCorrelation(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()

	From(context.Background()).Info("bare")
	if strings.Contains(buf.String(), "run_id") {
		t.Fatalf("unexpected correlation fields: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutputForTests(&buf)
	defer restore()
	defer SetLevel("DEBUG")

	if !SetLevel("warn") {
		t.Fatal("SetLevel(warn) should succeed")
	}
	Pkg("obs").Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %s", buf.String())
	}
	if SetLevel("chatty") {
		t.Fatal("SetLevel should reject unknown level names")
	}
}

func TestNewRunID_Unique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b || !strings.HasPrefix(a, "run-") {
		t.Fatalf("unexpected run ids %q %q", a, b)
	}
}
