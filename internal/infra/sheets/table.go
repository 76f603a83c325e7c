package sheets

import (
	"strings"

	"github.com/xavierca1/leaddialer/internal/entity"
)

// Column names of the lead sheet header row.
const (
	ColID          = "id"
	ColName        = "name"
	ColPhone       = "phone"
	ColEmail       = "email"
	ColStatus      = "status"
	ColLastContact = "lastContact"
	ColNotes       = "notes"
)

// Table is one load of the first tab: header row plus data rows.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string

	index map[string]int
}

// NewTable splits raw sheet values into header and data rows.
func NewTable(sheet string, values [][]string) *Table {
	t := &Table{Sheet: sheet, index: map[string]int{}}
	if len(values) == 0 {
		return t
	}

	t.Header = values[0]
	t.Rows = values[1:]
	for i, h := range t.Header {
		key := normalize(h)
		if _, dup := t.index[key]; !dup && key != "" {
			t.index[key] = i
		}
	}
	return t
}

// Column returns the index of a header, or -1.
func (t *Table) Column(name string) int {
	if i, ok := t.index[normalize(name)]; ok {
		return i
	}
	return -1
}

func (t *Table) value(row []string, name string) string {
	i := t.Column(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// paddedRow returns a copy of the data row at index i, widened to the header.
func (t *Table) paddedRow(i int) []string {
	width := len(t.Header)
	if len(t.Rows[i]) > width {
		width = len(t.Rows[i])
	}
	out := make([]string, width)
	copy(out, t.Rows[i])
	return out
}

// Lead maps the data row at index i (0-based) to a lead.
func (t *Table) Lead(i int) *entity.Lead {
	row := t.Rows[i]
	position := i + 1

	id := entity.PositionalID(position)
	if v := t.value(row, ColID); v != "" {
		id = entity.ExplicitID(v)
	}

	status := t.value(row, ColStatus)
	if status == "" {
		status = entity.LeadStatusNew
	}

	return &entity.Lead{
		ID:          id,
		Name:        t.value(row, ColName),
		Phone:       t.value(row, ColPhone),
		Email:       t.value(row, ColEmail),
		Status:      status,
		LastContact: t.value(row, ColLastContact),
		Notes:       t.value(row, ColNotes),
		Position:    position,
	}
}

// Leads maps every data row.
func (t *Table) Leads() []*entity.Lead {
	leads := make([]*entity.Lead, 0, len(t.Rows))
	for i := range t.Rows {
		leads = append(leads, t.Lead(i))
	}
	return leads
}

func normalize(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// columnName converts a 1-based column number to A1 letters (1 -> A, 27 -> AA).
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
