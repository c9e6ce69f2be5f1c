// Package catalog owns the in-memory mirror of the talk store and keeps the
// two in step on every mutation.
//
// Reads are served from memory only. Mutations change memory first and then
// issue the matching store call; the two are not atomic.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matsen/talkportal/internal/storage"
	"github.com/matsen/talkportal/internal/talk"
	"github.com/rs/zerolog"
)

// SortOrder selects the direction of SortByDate.
type SortOrder int

const (
	NewestFirst SortOrder = iota + 1
	OldestFirst
)

// String returns the order name used by the CLI.
func (o SortOrder) String() string {
	switch o {
	case NewestFirst:
		return "newest"
	case OldestFirst:
		return "oldest"
	default:
		return fmt.Sprintf("SortOrder(%d)", int(o))
	}
}

// ParseSortOrder accepts the menu selectors "1"/"2" and the names
// "newest"/"oldest".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "newest":
		return NewestFirst, nil
	case "2", "oldest":
		return OldestFirst, nil
	default:
		return 0, talk.NewParseError("sort order", s, nil)
	}
}

// DeleteResult reports the two independent outcomes of a delete.
type DeleteResult struct {
	InMemory bool // A mirrored record was removed
	InStore  bool // The store removed a document
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the clock used to stamp dates.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Catalog) { c.log = logger }
}

// Catalog is the in-memory mirror of a Store.
type Catalog struct {
	store storage.Store
	talks []talk.Talk
	now   func() time.Time
	log   zerolog.Logger
}

// New creates an empty catalog over store. Call Load to fill it.
func New(store storage.Store, opts ...Option) *Catalog {
	c := &Catalog{
		store: store,
		talks: []talk.Talk{},
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// today returns the current ISO date.
func (c *Catalog) today() string {
	return talk.FormatDate(c.now())
}

// Load replaces the mirror with the store's full contents.
func (c *Catalog) Load(ctx context.Context) (int, error) {
	talks, err := c.store.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading talks: %w", err)
	}

	c.talks = make([]talk.Talk, 0, len(talks))
	seen := make(map[string]bool, len(talks))
	for _, t := range talks {
		key := strings.ToLower(t.Title)
		if seen[key] {
			c.log.Warn().Str("title", t.Title).Msg("duplicate title in store")
		}
		seen[key] = true
		c.talks = append(c.talks, t.Normalize())
	}

	c.log.Debug().Int("count", len(c.talks)).Msg("catalog loaded")
	return len(c.talks), nil
}

// Len returns the number of mirrored talks.
func (c *Catalog) Len() int {
	return len(c.talks)
}

// All returns a copy of the mirror in its current order.
func (c *Catalog) All() []talk.Talk {
	out := make([]talk.Talk, len(c.talks))
	for i, t := range c.talks {
		out[i] = t.Clone()
	}
	return out
}

// CheckNewTitle validates a title for Add: it must be non-blank and must
// not exist in the store under any casing.
func (c *Catalog) CheckNewTitle(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return talk.NewValidationError("title", "title required")
	}

	exists, err := c.store.TitleExists(ctx, title)
	if err != nil {
		return fmt.Errorf("checking title: %w", err)
	}
	if exists {
		return &talk.DuplicateError{Title: title}
	}
	return nil
}

// Add creates a talk dated today, appends it to the mirror and inserts it
// into the store. tagsText is comma-separated.
func (c *Catalog) Add(ctx context.Context, title, description, postedBy, tagsText string) (talk.Talk, error) {
	return c.AddTags(ctx, title, description, postedBy, talk.ParseTags(tagsText))
}

// AddTags is Add with the tags already split. Each tag is trimmed and empty
// tags are dropped; a tag is never split further.
func (c *Catalog) AddTags(ctx context.Context, title, description, postedBy string, tags []string) (talk.Talk, error) {
	if err := c.CheckNewTitle(ctx, title); err != nil {
		return talk.Talk{}, err
	}

	t := talk.Talk{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		PostedBy:    strings.TrimSpace(postedBy),
		Tags:        cleanTags(tags),
		Date:        c.today(),
	}

	c.talks = append(c.talks, t)
	if err := c.store.Insert(ctx, t.Clone()); err != nil {
		return t.Clone(), fmt.Errorf("saving talk: %w", err)
	}

	c.log.Debug().Str("title", t.Title).Msg("talk added")
	return t.Clone(), nil
}

func cleanTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// indexOfTitle returns the index of the first talk whose title matches,
// ignoring case, or -1.
func (c *Catalog) indexOfTitle(title string) int {
	return slices.IndexFunc(c.talks, func(t talk.Talk) bool {
		return strings.EqualFold(t.Title, title)
	})
}

// SearchByTitle returns the first talk whose title matches, ignoring case.
func (c *Catalog) SearchByTitle(title string) (talk.Talk, error) {
	title = strings.TrimSpace(title)
	i := c.indexOfTitle(title)
	if i < 0 {
		return talk.Talk{}, &talk.NotFoundError{Title: title}
	}
	return c.talks[i].Clone(), nil
}

// SearchByTag returns every talk carrying the tag, ignoring case.
func (c *Catalog) SearchByTag(tag string) []talk.Talk {
	tag = strings.TrimSpace(tag)
	return c.filter(func(t talk.Talk) bool { return t.HasTag(tag) })
}

// SearchByPostedBy returns every talk by the author, ignoring case.
func (c *Catalog) SearchByPostedBy(name string) []talk.Talk {
	name = strings.TrimSpace(name)
	return c.filter(func(t talk.Talk) bool { return strings.EqualFold(t.PostedBy, name) })
}

func (c *Catalog) filter(match func(talk.Talk) bool) []talk.Talk {
	out := []talk.Talk{}
	for _, t := range c.talks {
		if match(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

// Update applies u to the first talk whose title matches, ignoring case,
// restamps its date and sends the changed fields to the store keyed by the
// talk's stored title. The date changes even when no field does.
func (c *Catalog) Update(ctx context.Context, title string, u talk.Update) (talk.Talk, error) {
	title = strings.TrimSpace(title)
	i := c.indexOfTitle(title)
	if i < 0 {
		return talk.Talk{}, &talk.NotFoundError{Title: title}
	}

	t := &c.talks[i]
	patch := talk.Patch{Date: c.today()}

	if u.Description != nil {
		v := strings.TrimSpace(*u.Description)
		t.Description = v
		patch.Description = &v
	}
	if u.PostedBy != nil {
		v := strings.TrimSpace(*u.PostedBy)
		t.PostedBy = v
		patch.PostedBy = &v
	}
	if u.Tags != nil {
		tags := talk.ParseTags(*u.Tags)
		t.Tags = tags
		patch.Tags = append([]string{}, tags...)
	}
	t.Date = patch.Date

	updated := t.Clone()
	if err := c.store.UpdateFields(ctx, updated.Title, patch); err != nil {
		return updated, fmt.Errorf("saving update: %w", err)
	}

	c.log.Debug().Str("title", updated.Title).Msg("talk updated")
	return updated, nil
}

// Delete removes the first talk whose title matches from the mirror, ignoring
// case, and independently asks the store to delete the literal title. The
// two outcomes are reported separately.
func (c *Catalog) Delete(ctx context.Context, title string) (DeleteResult, error) {
	title = strings.TrimSpace(title)

	var res DeleteResult
	if i := c.indexOfTitle(title); i >= 0 {
		c.talks = slices.Delete(c.talks, i, i+1)
		res.InMemory = true
	}

	deleted, err := c.store.DeleteByTitle(ctx, title)
	if err != nil {
		return res, fmt.Errorf("deleting from store: %w", err)
	}
	res.InStore = deleted

	c.log.Debug().
		Str("title", title).
		Bool("in_memory", res.InMemory).
		Bool("in_store", res.InStore).
		Msg("talk deleted")
	return res, nil
}

// SortByDate reorders the mirror by date. The sort is stable, so talks with
// equal dates keep their relative order in both directions. The store is not
// touched. A malformed stored date aborts the sort and leaves the order as
// it was.
func (c *Catalog) SortByDate(order SortOrder) error {
	if order != NewestFirst && order != OldestFirst {
		return talk.NewParseError("sort order", order.String(), nil)
	}

	type keyed struct {
		date time.Time
		talk talk.Talk
	}
	items := make([]keyed, len(c.talks))
	for i, t := range c.talks {
		d, err := talk.ParseDate(t.Date)
		if err != nil {
			return fmt.Errorf("sorting %q: %w", t.Title, err)
		}
		items[i] = keyed{date: d, talk: t}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if order == NewestFirst {
			return b.date.Compare(a.date)
		}
		return a.date.Compare(b.date)
	})

	for i, item := range items {
		c.talks[i] = item.talk
	}
	return nil
}
