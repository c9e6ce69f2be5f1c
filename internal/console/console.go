// Package console implements the numbered interactive menu over a line
// reader and a writer.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/talkportal/internal/catalog"
	"github.com/matsen/talkportal/internal/talk"
)

// Menu choices
const (
	choiceAdd = iota + 1
	choiceViewAll
	choiceSearchTitle
	choiceSearchTag
	choiceSearchPostedBy
	choiceUpdate
	choiceDelete
	choiceSort
	choiceExit
)

const cardRule = "---------------------------------------------------"

// errEndOfInput ends the session when the reader is exhausted mid-command.
var errEndOfInput = errors.New("end of input")

// Console runs the menu loop against a catalog.
type Console struct {
	cat    *catalog.Catalog
	in     *bufio.Reader
	out    io.Writer
	styles styles
}

// New creates a console reading commands from in and writing to out.
func New(cat *catalog.Catalog, in io.Reader, out io.Writer) *Console {
	return &Console{
		cat:    cat,
		in:     bufio.NewReader(in),
		out:    out,
		styles: newStyles(out),
	}
}

// Run shows the menu until the user exits or input ends. Command failures
// are printed and the loop continues; only a failed read is returned.
func (c *Console) Run(ctx context.Context) error {
	for {
		c.printMenu()

		line, err := c.readLine()
		if errors.Is(err, errEndOfInput) {
			c.exit()
			return nil
		}
		if err != nil {
			return err
		}

		choice, err := parseChoice(line)
		if err != nil {
			c.notice("Invalid input. Enter number 1-9.")
			continue
		}
		if choice == choiceExit {
			c.exit()
			return nil
		}

		err = c.dispatch(ctx, choice)
		if errors.Is(err, errEndOfInput) {
			c.exit()
			return nil
		}
		if err != nil {
			var readErr *readError
			if errors.As(err, &readErr) {
				return readErr.err
			}
			c.printf("error: %v\n", err)
		}
	}
}

func (c *Console) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case choiceAdd:
		return c.add(ctx)
	case choiceViewAll:
		c.viewAll()
		return nil
	case choiceSearchTitle:
		return c.searchByTitle()
	case choiceSearchTag:
		return c.searchByTag()
	case choiceSearchPostedBy:
		return c.searchByPostedBy()
	case choiceUpdate:
		return c.update(ctx)
	case choiceDelete:
		return c.delete(ctx)
	case choiceSort:
		return c.sortByDate()
	default:
		c.notice("Invalid choice!")
		return nil
	}
}

// parseChoice parses a menu selection. Range is checked by the caller.
func parseChoice(line string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, talk.NewParseError("menu choice", line, err)
	}
	return n, nil
}

func (c *Console) printMenu() {
	c.println("")
	c.println(c.styles.header.Render("===== INTERNAL TECH TALK PORTAL ====="))
	for i, item := range []string{
		"Add Tech Talk",
		"View All Tech Talks",
		"Search by Title",
		"Search by Tag",
		"Search by Posted By",
		"Update Tech Talk",
		"Delete Tech Talk",
		"Sort Tech Talks by Date",
		"Exit",
	} {
		c.printf("%d. %s\n", i+1, item)
	}
	c.printf("Enter your choice: ")
}

func (c *Console) exit() {
	c.println("Exiting portal...")
}

func (c *Console) add(ctx context.Context) error {
	title, err := c.prompt("Enter title: ")
	if err != nil {
		return err
	}
	if err := c.cat.CheckNewTitle(ctx, title); err != nil {
		switch {
		case errors.Is(err, talk.ErrValidation):
			c.notice("Title required!")
			return nil
		case errors.Is(err, talk.ErrDuplicate):
			c.notice("Tech Talk with this title already exists!")
			return nil
		}
		return err
	}

	desc, err := c.prompt("Enter description: ")
	if err != nil {
		return err
	}
	postedBy, err := c.prompt("Enter posted by: ")
	if err != nil {
		return err
	}
	tags, err := c.prompt("Enter tags (comma separated): ")
	if err != nil {
		return err
	}

	if _, err := c.cat.Add(ctx, title, desc, postedBy, tags); err != nil {
		return err
	}
	c.success("Tech Talk added successfully!")
	return nil
}

func (c *Console) viewAll() {
	talks := c.cat.All()
	if len(talks) == 0 {
		c.notice("No tech talks available!")
		return
	}
	c.println("")
	c.println(c.styles.heading.Render("All Tech Talks:"))
	c.printTalks(talks)
}

func (c *Console) searchByTitle() error {
	title, err := c.prompt("Enter title to search: ")
	if err != nil {
		return err
	}
	t, err := c.cat.SearchByTitle(title)
	if errors.Is(err, talk.ErrNotFound) {
		c.notice("Not found in portal.")
		return nil
	}
	if err != nil {
		return err
	}
	c.printTalk(t)
	return nil
}

func (c *Console) searchByTag() error {
	tag, err := c.prompt("Enter tag to search: ")
	if err != nil {
		return err
	}
	talks := c.cat.SearchByTag(tag)
	if len(talks) == 0 {
		c.notice("No talks found with this tag.")
		return nil
	}
	c.printTalks(talks)
	return nil
}

func (c *Console) searchByPostedBy() error {
	name, err := c.prompt("Enter author name: ")
	if err != nil {
		return err
	}
	talks := c.cat.SearchByPostedBy(name)
	if len(talks) == 0 {
		c.notice("No talks found by this author.")
		return nil
	}
	c.printTalks(talks)
	return nil
}

func (c *Console) update(ctx context.Context) error {
	title, err := c.prompt("Enter title to update: ")
	if err != nil {
		return err
	}
	if _, err := c.cat.SearchByTitle(title); err != nil {
		if errors.Is(err, talk.ErrNotFound) {
			c.notice("Tech Talk not found.")
			return nil
		}
		return err
	}

	var u talk.Update
	for _, field := range []struct {
		prompt string
		dst    **string
	}{
		{"New description (leave blank to skip): ", &u.Description},
		{"New posted by (leave blank to skip): ", &u.PostedBy},
		{"New tags (comma separated, leave blank to skip): ", &u.Tags},
	} {
		v, err := c.prompt(field.prompt)
		if err != nil {
			return err
		}
		if v != "" {
			*field.dst = &v
		}
	}

	if _, err := c.cat.Update(ctx, title, u); err != nil {
		return err
	}
	c.success("Tech Talk updated successfully!")
	return nil
}

func (c *Console) delete(ctx context.Context) error {
	title, err := c.prompt("Enter title to delete: ")
	if err != nil {
		return err
	}
	res, err := c.cat.Delete(ctx, title)
	if err != nil {
		return err
	}
	if res.InMemory {
		c.success("Tech Talk deleted.")
	} else {
		c.notice("Tech Talk not found.")
	}
	return nil
}

func (c *Console) sortByDate() error {
	c.println("1. Newest to Oldest")
	c.println("2. Oldest to Newest")
	sel, err := c.prompt("Choose option: ")
	if err != nil {
		return err
	}

	order, err := catalog.ParseSortOrder(sel)
	if err != nil {
		c.notice("Invalid choice!")
		return nil
	}
	if err := c.cat.SortByDate(order); err != nil {
		return err
	}

	c.println("")
	c.println(c.styles.heading.Render("Sorted Tech Talks:"))
	c.printTalks(c.cat.All())
	return nil
}

func (c *Console) printTalks(talks []talk.Talk) {
	for _, t := range talks {
		c.printTalk(t)
	}
}

func (c *Console) printTalk(t talk.Talk) {
	c.println(c.styles.rule.Render(cardRule))
	c.field("Title:", t.Title)
	c.field("Description:", t.Description)
	c.field("Posted By:", t.PostedBy)
	c.field("Date:", t.Date)
	c.field("Tags:", FormatTags(t.Tags))
}

func (c *Console) field(label, value string) {
	c.printf("%s %s\n", c.styles.label.Render(label), value)
}

// FormatTags renders tags as a bracketed, comma-separated list: [a, b].
func FormatTags(tags []string) string {
	return "[" + strings.Join(tags, ", ") + "]"
}

func (c *Console) success(msg string) {
	c.println(c.styles.ok.Render(msg))
}

func (c *Console) notice(msg string) {
	c.println(c.styles.notice.Render(msg))
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// readError wraps a failed read so Run can tell it apart from command errors.
type readError struct {
	err error
}

func (e *readError) Error() string { return "reading input: " + e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

// prompt writes label and returns the trimmed reply.
func (c *Console) prompt(label string) (string, error) {
	c.printf("%s", label)
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readLine returns the next line without its terminator. A final line with
// no newline is returned normally; the read after it reports errEndOfInput.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", errEndOfInput
		}
		err = nil
	}
	if err != nil {
		return "", &readError{err: err}
	}
	return strings.TrimRight(line, "\r\n"), nil
}
