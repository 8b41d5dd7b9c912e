package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Printer writes command results in the format picked with --output.
type Printer struct {
	format string
	out    io.Writer
}

func newPrinter(format string, out io.Writer) (*Printer, error) {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return &Printer{format: format, out: out}, nil
	}
	return nil, fmt.Errorf("unknown output format %q: use table, json or yaml", format)
}

// Rows is the table rendering of a result.
type Rows struct {
	Headers []string
	Rows    [][]string
	// Footer is printed below the table, such as the page position.
	Footer string
}

// Print writes v as JSON or YAML, or calls rows and renders a table.
func (p *Printer) Print(v any, rows func() Rows) error {
	switch p.format {
	case formatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case formatYAML:
		// Going through JSON keeps the backend's field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	}

	r := rows()
	if len(r.Rows) == 0 {
		_, err := fmt.Fprintln(p.out, "Nothing to show.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(r.Headers...).
		Rows(r.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(p.out, t.Render()); err != nil {
		return err
	}
	if r.Footer != "" {
		_, err := fmt.Fprintln(p.out, r.Footer)
		return err
	}
	return nil
}

// Message prints a one-line acknowledgement. Structured formats get {"message": ...}.
func (p *Printer) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.format == formatTable {
		_, err := fmt.Fprintln(p.out, msg)
		return err
	}
	return p.Print(map[string]string{"message": msg}, nil)
}

// KeyValues renders a single record as a two-column table.
func KeyValues(pairs ...string) Rows {
	r := Rows{Headers: []string{"Field", "Value"}}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Rows = append(r.Rows, []string{pairs[i], pairs[i+1]})
	}
	return r
}

func itoa(n int) string { return strconv.Itoa(n) }

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
