// Package tabular turns uploaded spreadsheets into row-oriented datasets and
// pulls candidate questions out of them.
package tabular

import "strings"

// DefaultQuestionToken marks question columns when no token is configured.
const DefaultQuestionToken = "pergunta"

// RawRow maps column name to cell text. Every dataset column is present; a
// missing trailing field is stored as "".
type RawRow map[string]string

// Cell returns the value of col, or "" when the column is unknown.
func (r RawRow) Cell(col string) string {
	return r[col]
}

// Dataset is a normalized table. Columns keep header order.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []RawRow `json:"rows"`

	questionToken string
}

// RowCount returns the number of data rows.
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// Sample returns the first n rows, or every row when n <= 0.
func (d *Dataset) Sample(n int) []RawRow {
	if n <= 0 || n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[:n]
}

// QuestionSet is an ordered list of unique, trimmed question strings.
type QuestionSet []string

// QuestionColumns returns the columns whose header contains the question
// token, case-insensitively.
func (d *Dataset) QuestionColumns() []string {
	token := strings.ToLower(d.token())
	var cols []string
	for _, col := range d.Columns {
		if strings.Contains(strings.ToLower(col), token) {
			cols = append(cols, col)
		}
	}
	return cols
}

// Questions extracts candidate questions. Cells from question columns are
// collected row by row; if that yields nothing every non-empty cell is used.
// Values are trimmed and deduplicated, keeping the first occurrence.
func (d *Dataset) Questions() QuestionSet {
	if qs := d.collect(d.QuestionColumns()); len(qs) > 0 {
		return qs
	}
	return d.collect(d.Columns)
}

func (d *Dataset) collect(cols []string) QuestionSet {
	qs := QuestionSet{}
	seen := make(map[string]struct{})
	for _, row := range d.Rows {
		for _, col := range cols {
			v := strings.TrimSpace(row[col])
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			qs = append(qs, v)
		}
	}
	return qs
}

func (d *Dataset) token() string {
	if d.questionToken == "" {
		return DefaultQuestionToken
	}
	return d.questionToken
}
