package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

var allCodes = []Code{
	InvalidArgument,
	NotFound,
	FailedPrecondition,
	Unavailable,
	Internal,
}

func testCodeOf_RoundtripForTypedErrors(t *rapid.T) {
	code := rapid.SampledFrom(allCodes).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")

	err := New(code, message)
	if got := CodeOf(err); got != code {
		t.Fatalf("CodeOf(New) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(err); got != message {
		t.Fatalf("MessageOf(New) mismatch: got=%q want=%q", got, message)
	}
}

func TestCodeOf_RoundtripForTypedErrors(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCodeOf_RoundtripForTypedErrors)
}

func testCodeOfAndMessageOf_WrappedTypedError(t *rapid.T) {
	code := rapid.SampledFrom(allCodes).Draw(t, "code")
	message := rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "message")
	cause := errors.New(rapid.StringMatching(`[a-zA-Z0-9 _:\-]{1,80}`).Draw(t, "cause"))

	err := Wrap(code, message, cause)
	wrapped := fmt.Errorf("outer: %w", err)

	if got := CodeOf(wrapped); got != code {
		t.Fatalf("CodeOf(wrapped) mismatch: got=%q want=%q", got, code)
	}
	if got := MessageOf(wrapped); got != message {
		t.Fatalf("MessageOf(wrapped) mismatch: got=%q want=%q", got, message)
	}
	if !errors.Is(wrapped, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	if !strings.Contains(wrapped.Error(), cause.Error()) {
		t.Fatalf("Error() should include cause text, got %q", wrapped.Error())
	}
}

func TestCodeOfAndMessageOf_WrappedTypedError(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testCodeOfAndMessageOf_WrappedTypedError)
}

func TestUntypedAndNilFallbacks(t *testing.T) {
	t.Parallel()
	untyped := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	if got := CodeOf(untyped); got != Internal {
		t.Fatalf("CodeOf(untyped) mismatch: got=%q want=%q", got, Internal)
	}
	if got := MessageOf(untyped); got != "internal error" {
		t.Fatalf("MessageOf(untyped) mismatch: got=%q want=%q", got, "internal error")
	}
	if got := CodeOf(nil); got != Internal {
		t.Fatalf("CodeOf(nil) mismatch: got=%q want=%q", got, Internal)
	}
	if got := MessageOf(nil); got != string(Internal) {
		t.Fatalf("MessageOf(nil) mismatch: got=%q want=%q", got, Internal)
	}
}

func TestExitCode_Mapping(t *testing.T) {
	t.Parallel()
	seen := map[int]Code{}
	for _, code := range allCodes {
		exit := ExitCode(code)
		if exit == 0 {
			t.Fatalf("ExitCode(%q) must be non-zero", code)
		}
		if prev, dup := seen[exit]; dup {
			t.Fatalf("ExitCode collision: %q and %q both map to %d", prev, code, exit)
		}
		seen[exit] = code
	}
	if got := ExitCode(Code("unknown_code")); got != ExitCode(Internal) {
		t.Fatalf("unknown code should map like internal, got %d", got)
	}
}
