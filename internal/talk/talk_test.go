package talk

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"single", "go", []string{"go"}},
		{"trimmed", " go ,  cloud ", []string{"go", "cloud"}},
		{"empty fragments dropped", "go, , cloud", []string{"go", "cloud"}},
		{"only commas", ",,, ,", []string{}},
		{"order kept", "rust,systems,async", []string{"rust", "systems", "async"}},
		{"inner spaces kept", "machine learning, go", []string{"machine learning", "go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.text)
			if got == nil {
				t.Fatalf("ParseTags(%q) = nil, want non-nil slice", tt.text)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.March, 7, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(d); got != "2026-03-07" {
		t.Errorf("FormatDate() = %q, want 2026-03-07", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-12-31")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.December || d.Day() != 31 {
		t.Errorf("ParseDate() = %v, want 2025-12-31", d)
	}

	_, err = ParseDate("31/12/2025")
	if !errors.Is(err, ErrParse) {
		t.Errorf("ParseDate(bad) error = %v, want ErrParse", err)
	}
}

func TestHasTag(t *testing.T) {
	tk := Talk{Tags: []string{"Rust", "systems"}}

	if !tk.HasTag("SYSTEMS") {
		t.Error("HasTag(SYSTEMS) = false, want true")
	}
	if !tk.HasTag("rust") {
		t.Error("HasTag(rust) = false, want true")
	}
	if tk.HasTag("sys") {
		t.Error("HasTag(sys) = true, want false (exact match only)")
	}
}

func TestNormalize(t *testing.T) {
	tk := Talk{Title: "x"}.Normalize()
	if tk.Tags == nil {
		t.Error("Normalize() left nil tags")
	}
}

func TestClone(t *testing.T) {
	orig := Talk{Title: "x", Tags: []string{"a"}}
	c := orig.Clone()
	c.Tags[0] = "b"
	if orig.Tags[0] != "a" {
		t.Error("Clone() shares the tag slice with the original")
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"connection", NewConnectionError("mongo", errors.New("refused")), ErrConnection},
		{"validation", NewValidationError("title", "required"), ErrValidation},
		{"duplicate", &DuplicateError{Title: "a"}, ErrDuplicate},
		{"not found", &NotFoundError{Title: "a"}, ErrNotFound},
		{"parse", NewParseError("choice", "x", nil), ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := errors.Join(errors.New("context"), tt.err)
			if !errors.Is(wrapped, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
			if tt.err.Error() == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewConnectionError("mongo", cause)
	if !errors.Is(err, cause) {
		t.Error("ConnectionError does not unwrap to its cause")
	}
	if got := err.Error(); got != "mongo connection failed: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
}
