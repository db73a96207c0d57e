// Package deck reads and writes quote decks, a plain text format for bulk
// import and export:
//
//	# comments run to the end of the line
//	"Stay hungry, stay foolish." -- Steve Jobs
//	"Code wins." -- "C# guru"
//	"Simplicity is the ultimate sophistication."
//
// Each entry is a double-quoted Go string literal optionally followed by
// "--" and the author, either as bare words or as another quoted literal.
// Entries become stored quotes in "text - Author" form. Write always quotes
// the author so any exported deck reads back unchanged.
package deck

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/jostojic/quotescreen/internal/domain"
)

var (
	deckLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
		{Name: "Dash", Pattern: `--`},
		{Name: "Word", Pattern: `[^\s"#]+`},
	})

	deckParser = participle.MustBuild[Deck](
		participle.Lexer(deckLexer),
		participle.Elide("Whitespace", "Comment"),
	)
)

// Deck is the parsed file.
type Deck struct {
	Entries []*Entry `parser:"Newline* ( @@ Newline* )*"`
}

// Entry is one quote.
type Entry struct {
	Pos    lexer.Position `parser:""`
	Text   StringLiteral  `parser:"@String"`
	Author *Author        `parser:"( Dash @@ )?"`
}

// Author is either a quoted literal or the bare words up to the line end.
type Author struct {
	Quoted *StringLiteral `parser:"  @String"`
	Words  []string       `parser:"| @Word+"`
}

func (a *Author) String() string {
	if a.Quoted != nil {
		return strings.TrimSpace(string(*a.Quoted))
	}

	return strings.Join(a.Words, " ")
}

// Quote returns the entry in stored form.
func (e *Entry) Quote() string {
	text := strings.TrimSpace(string(e.Text))
	if e.Author == nil {
		return text
	}

	author := e.Author.String()
	if author == "" {
		return text
	}

	return text + " - " + author
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return errors.New("string literal capture requires value")
	}

	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}

	*s = StringLiteral(val)

	return nil
}

// Parse reads a deck and returns its quotes in file order.
// Syntax errors are reported as domain validation errors with the position.
func Parse(r io.Reader) ([]string, error) {
	d, err := deckParser.Parse("", r)
	if err != nil {
		return nil, domain.NewValidationError("deck", err.Error())
	}

	return d.Quotes(), nil
}

// ParseString parses deck content from a string.
func ParseString(input string) ([]string, error) {
	return Parse(strings.NewReader(input))
}

// Quotes returns the stored form of every entry.
func (d *Deck) Quotes() []string {
	out := make([]string, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, e.Quote())
	}

	return out
}

// Write formats quotes as a deck, one entry per line.
func Write(w io.Writer, quotes []string) error {
	for _, q := range quotes {
		body, author := domain.SplitAttribution(q)

		line := strconv.Quote(body)
		if author != "" {
			line += " -- " + strconv.Quote(author)
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing deck: %w", err)
		}
	}

	return nil
}
