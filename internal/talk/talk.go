// Package talk defines the tech talk record and the helpers shared by the
// catalog and the storage backends.
package talk

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for the date field.
const DateLayout = "2006-01-02"

// Talk represents a single tech talk record.
type Talk struct {
	Title       string   `json:"title" bson:"title"` // De facto unique key
	Description string   `json:"description" bson:"description"`
	PostedBy    string   `json:"postedBy" bson:"postedBy"`
	Tags        []string `json:"tags" bson:"tags"`
	Date        string   `json:"date" bson:"date"` // YYYY-MM-DD
}

// Update carries the optional fields of an update request.
// A nil field is omitted and leaves the existing value unchanged.
type Update struct {
	Description *string
	PostedBy    *string
	Tags        *string // Comma-separated, parsed with ParseTags
}

// Patch is the field-level change sent to a store for one record.
// Date is always set; the other fields are set only when they changed.
type Patch struct {
	Description *string
	PostedBy    *string
	Tags        []string // nil means unchanged
	Date        string
}

// ParseTags splits comma-separated tag text, trims each piece and drops
// empty pieces. The result is never nil.
func ParseTags(text string) []string {
	tags := []string{}
	for _, piece := range strings.Split(text, ",") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			tags = append(tags, piece)
		}
	}
	return tags
}

// FormatDate formats t as an ISO calendar date in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewParseError("date", s, err)
	}
	return d, nil
}

// HasTag reports whether the talk carries tag, ignoring case.
func (t Talk) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if strings.EqualFold(existing, tag) {
			return true
		}
	}
	return false
}

// Normalize returns a copy with a non-nil tag slice.
// Backends call it on every loaded record.
func (t Talk) Normalize() Talk {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// Clone returns a deep copy of the talk.
func (t Talk) Clone() Talk {
	c := t
	c.Tags = append([]string{}, t.Tags...)
	return c
}
