package content

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTypedErrorsUnwrapToSentinels(t *testing.T) {
	cases := []struct {
		err      error
		sentinel error
	}{
		{&MissingFieldError{Path: "a.md", Fields: []string{"author", "lang"}}, ErrMissingField},
		{&FormatError{Path: "a.md", Field: "episode", Reason: "must be a positive integer"}, ErrFormat},
		{&SeriesRuleError{Path: "a.md", Violations: []string{"series cover must not carry episode"}}, ErrSeriesRule},
		{&TransliterationBatchError{Requested: 4, Returned: 3}, ErrTransliterationBatch},
		{&DanglingSeriesReferenceError{Path: "a.md", SeriesTitle: "Tales"}, ErrDanglingSeriesReference},
		{&NotFoundError{Resource: "author", Key: "premchand"}, ErrNotFound},
	}
	for _, tc := range cases {
		if !errors.Is(tc.err, tc.sentinel) {
			t.Fatalf("%T does not unwrap to its sentinel", tc.err)
		}
		wrapped := fmt.Errorf("outer: %w", tc.err)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("%T lost its sentinel through wrapping", tc.err)
		}
	}
}

func TestMissingFieldErrorListsEveryField(t *testing.T) {
	err := &MissingFieldError{Path: "a.md", Fields: []string{"author", "lang"}}
	msg := err.Error()
	for _, field := range err.Fields {
		if !strings.Contains(msg, field) {
			t.Fatalf("message %q missing field %q", msg, field)
		}
	}
}
