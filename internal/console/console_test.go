package console

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/matsen/talkportal/internal/catalog"
	"github.com/matsen/talkportal/internal/storage"
	"github.com/matsen/talkportal/internal/talk"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// session runs the menu over input and returns the plain-text transcript.
func session(t *testing.T, cat *catalog.Catalog, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := New(cat, strings.NewReader(input), &out).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return ansi.ReplaceAllString(out.String(), "")
}

func newCatalog(t *testing.T, seed ...talk.Talk) (*catalog.Catalog, storage.Store) {
	t.Helper()
	s, err := storage.OpenJSONL(filepath.Join(t.TempDir(), "talks.jsonl"))
	if err != nil {
		t.Fatalf("OpenJSONL() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return loadCatalog(t, s, seed...), s
}

func loadCatalog(t *testing.T, s storage.Store, seed ...talk.Talk) *catalog.Catalog {
	t.Helper()
	for _, tk := range seed {
		if err := s.Insert(context.Background(), tk); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	cat := catalog.New(s, catalog.WithClock(func() time.Time {
		return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	}))
	if _, err := cat.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cat
}

func rust() talk.Talk {
	return talk.Talk{Title: "Intro to Rust", Description: "Basics", PostedBy: "Alice", Tags: []string{"rust", "systems"}, Date: "2025-03-01"}
}

func goTalk() talk.Talk {
	return talk.Talk{Title: "Go Concurrency", Description: "Channels", PostedBy: "Bob", Tags: []string{"go"}, Date: "2026-04-10"}
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n--- output ---\n%s", w, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(out, w) {
			t.Errorf("output unexpectedly contains %q\n--- output ---\n%s", w, out)
		}
	}
}

func TestRun_MenuAndExit(t *testing.T) {
	cat, _ := newCatalog(t)
	out := session(t, cat, "9\n")

	menu := `
===== INTERNAL TECH TALK PORTAL =====
1. Add Tech Talk
2. View All Tech Talks
3. Search by Title
4. Search by Tag
5. Search by Posted By
6. Update Tech Talk
7. Delete Tech Talk
8. Sort Tech Talks by Date
9. Exit
Enter your choice: `
	if want := menu + "Exiting portal...\n"; out != want {
		t.Errorf("transcript = %q, want %q", out, want)
	}
}

func TestRun_EndOfInputExits(t *testing.T) {
	cat, _ := newCatalog(t)

	out := session(t, cat, "")
	assertContains(t, out, "Enter your choice: ", "Exiting portal...")

	// Mid-command: the add is abandoned
	out = session(t, cat, "1\nHalf Entered\n")
	assertContains(t, out, "Enter description: ", "Exiting portal...")
	if cat.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cat.Len())
	}
}

func TestRun_LastLineWithoutNewline(t *testing.T) {
	cat, _ := newCatalog(t)
	out := session(t, cat, "2\n9")
	assertContains(t, out, "No tech talks available!", "Exiting portal...")
}

func TestRun_InvalidSelections(t *testing.T) {
	cat, _ := newCatalog(t)
	out := session(t, cat, "abc\n\n0\n12\n9\n")

	if got := strings.Count(out, "Invalid input. Enter number 1-9."); got != 2 {
		t.Errorf("invalid input notices = %d, want 2", got)
	}
	if got := strings.Count(out, "Invalid choice!"); got != 2 {
		t.Errorf("invalid choice notices = %d, want 2", got)
	}
	if got := strings.Count(out, "===== INTERNAL TECH TALK PORTAL ====="); got != 5 {
		t.Errorf("menu shown %d times, want 5", got)
	}
}

func TestRun_AddThenViewAll(t *testing.T) {
	cat, s := newCatalog(t)
	out := session(t, cat, "1\nIntro to Rust\nBasics\nAlice\nrust, , systems\n2\n9\n")

	assertContains(t, out,
		"Enter title: Enter description: Enter posted by: Enter tags (comma separated): Tech Talk added successfully!\n",
		"\nAll Tech Talks:\n"+
			"---------------------------------------------------\n"+
			"Title: Intro to Rust\n"+
			"Description: Basics\n"+
			"Posted By: Alice\n"+
			"Date: 2026-10-19\n"+
			"Tags: [rust, systems]\n",
	)

	stored, err := s.FindByTitle(context.Background(), "Intro to Rust")
	if err != nil || stored == nil {
		t.Fatalf("FindByTitle() = %v, %v", stored, err)
	}
}

func TestRun_AddRejectsBeforeOtherPrompts(t *testing.T) {
	cat, _ := newCatalog(t, rust())

	out := session(t, cat, "1\n   \n9\n")
	assertContains(t, out, "Title required!")
	assertNotContains(t, out, "Enter description: ")

	out = session(t, cat, "1\nintro TO rust\n9\n")
	assertContains(t, out, "Tech Talk with this title already exists!")
	assertNotContains(t, out, "Enter description: ")

	if cat.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cat.Len())
	}
}

func TestRun_Searches(t *testing.T) {
	cat, _ := newCatalog(t, rust(), goTalk())

	tests := []struct {
		name    string
		input   string
		want    []string
		without []string
	}{
		{
			name:    "title found",
			input:   "3\nINTRO TO RUST\n9\n",
			want:    []string{"Enter title to search: ", "Title: Intro to Rust\n"},
			without: []string{"Go Concurrency"},
		},
		{
			name:  "title missing",
			input: "3\nHaskell\n9\n",
			want:  []string{"Not found in portal."},
		},
		{
			name:    "tag found",
			input:   "4\n Systems \n9\n",
			want:    []string{"Enter tag to search: ", "Title: Intro to Rust\n", "Tags: [rust, systems]\n"},
			without: []string{"Go Concurrency"},
		},
		{
			name:  "tag missing",
			input: "4\nrus\n9\n",
			want:  []string{"No talks found with this tag."},
		},
		{
			name:    "author found",
			input:   "5\nbob\n9\n",
			want:    []string{"Enter author name: ", "Title: Go Concurrency\n", "Posted By: Bob\n"},
			without: []string{"Intro to Rust"},
		},
		{
			name:  "author missing",
			input: "5\nCarol\n9\n",
			want:  []string{"No talks found by this author."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := session(t, cat, tt.input)
			assertContains(t, out, tt.want...)
			assertNotContains(t, out, tt.without...)
		})
	}
}

func TestRun_UpdateBlankFieldsRestampsDate(t *testing.T) {
	cat, s := newCatalog(t, rust())
	out := session(t, cat, "6\nintro to rust\n\n\n\n9\n")

	assertContains(t, out,
		"Enter title to update: New description (leave blank to skip): New posted by (leave blank to skip): New tags (comma separated, leave blank to skip): Tech Talk updated successfully!",
	)

	got, _ := cat.SearchByTitle("Intro to Rust")
	want := rust()
	want.Date = "2026-10-19"
	if got.Description != want.Description || got.PostedBy != want.PostedBy ||
		FormatTags(got.Tags) != FormatTags(want.Tags) || got.Date != want.Date {
		t.Errorf("after update = %+v, want %+v", got, want)
	}

	stored, _ := s.FindByTitle(context.Background(), "Intro to Rust")
	if stored == nil || stored.Date != "2026-10-19" {
		t.Errorf("stored = %+v, want date 2026-10-19", stored)
	}
}

func TestRun_UpdateFields(t *testing.T) {
	cat, _ := newCatalog(t, rust())
	session(t, cat, "6\nIntro to Rust\nOwnership\nAlicia\nrust,borrowck\n9\n")

	got, _ := cat.SearchByTitle("Intro to Rust")
	if got.Description != "Ownership" || got.PostedBy != "Alicia" || FormatTags(got.Tags) != "[rust, borrowck]" {
		t.Errorf("after update = %+v", got)
	}
}

func TestRun_UpdateNotFound(t *testing.T) {
	cat, _ := newCatalog(t, rust())
	out := session(t, cat, "6\nHaskell\n9\n")

	assertContains(t, out, "Tech Talk not found.")
	assertNotContains(t, out, "New description")
}

func TestRun_Delete(t *testing.T) {
	cat, s := newCatalog(t, rust(), goTalk())

	out := session(t, cat, "7\nIntro to Rust\n7\nIntro to Rust\n9\n")
	assertContains(t, out, "Enter title to delete: Tech Talk deleted.\n", "Enter title to delete: Tech Talk not found.\n")

	if cat.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cat.Len())
	}
	if stored, _ := s.FindByTitle(context.Background(), "Intro to Rust"); stored != nil {
		t.Errorf("store still has %+v", stored)
	}
}

func TestRun_Sort(t *testing.T) {
	cat, _ := newCatalog(t, rust(), goTalk())

	out := session(t, cat, "8\n1\n9\n")
	assertContains(t, out, "1. Newest to Oldest\n2. Oldest to Newest\nChoose option: \nSorted Tech Talks:\n")
	sorted := out[strings.Index(out, "Sorted Tech Talks:"):]
	if strings.Index(sorted, "Go Concurrency") > strings.Index(sorted, "Intro to Rust") {
		t.Errorf("newest first printed Rust before Go:\n%s", sorted)
	}

	out = session(t, cat, "8\n2\n9\n")
	sorted = out[strings.Index(out, "Sorted Tech Talks:"):]
	if strings.Index(sorted, "Intro to Rust") > strings.Index(sorted, "Go Concurrency") {
		t.Errorf("oldest first printed Go before Rust:\n%s", sorted)
	}
}

func TestRun_SortInvalidChoice(t *testing.T) {
	cat, _ := newCatalog(t, rust(), goTalk())
	out := session(t, cat, "8\n3\n9\n")

	assertContains(t, out, "Choose option: Invalid choice!")
	assertNotContains(t, out, "Sorted Tech Talks:")
}

func TestRun_SortMalformedDateReported(t *testing.T) {
	bad := goTalk()
	bad.Date = "someday"
	cat, _ := newCatalog(t, rust(), bad)

	out := session(t, cat, "8\n1\n2\n9\n")
	assertContains(t, out, "error: ", "someday", "View All Tech Talks")
	assertNotContains(t, out, "Sorted Tech Talks:")
}

// failingStore fails every insert.
type failingStore struct {
	storage.Store
}

func (failingStore) Insert(context.Context, talk.Talk) error {
	return errors.New("disk full")
}

func TestRun_StoreErrorReturnsToMenu(t *testing.T) {
	s, err := storage.OpenJSONL(filepath.Join(t.TempDir(), "talks.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	cat := loadCatalog(t, failingStore{s})

	out := session(t, cat, "1\nNew Talk\nd\np\nt\n9\n")
	assertContains(t, out, "error: saving talk: disk full\n", "Exiting portal...")
	assertNotContains(t, out, "Tech Talk added successfully!")
}

func TestRun_ReadErrorReturned(t *testing.T) {
	cat, _ := newCatalog(t)
	boom := errors.New("boom")

	var out bytes.Buffer
	err := New(cat, iotest.ErrReader(boom), &out).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want %v", err, boom)
	}
}

func TestFormatTags(t *testing.T) {
	tests := []struct {
		tags []string
		want string
	}{
		{nil, "[]"},
		{[]string{}, "[]"},
		{[]string{"go"}, "[go]"},
		{[]string{"rust", "systems"}, "[rust, systems]"},
	}
	for _, tt := range tests {
		if got := FormatTags(tt.tags); got != tt.want {
			t.Errorf("FormatTags(%q) = %q, want %q", tt.tags, got, tt.want)
		}
	}
}
