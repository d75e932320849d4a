package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrParse is returned when input cannot be decoded as a table.
	ErrParse = errors.New("tabular: cannot parse input")
	// ErrEmptyInput is returned when rows are required but none are present.
	ErrEmptyInput = errors.New("tabular: no data rows")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options controls normalization.
type Options struct {
	// Delimiter separates fields in delimited text. Defaults to ','.
	Delimiter rune
	// QuestionToken marks question columns. Defaults to DefaultQuestionToken.
	QuestionToken string
	// RequireRows makes a table without data rows an ErrEmptyInput.
	RequireRows bool
	// Sheet selects a workbook sheet. Defaults to the first sheet.
	Sheet string
}

// NormalizeFile picks a decoder from the file extension of name.
func NormalizeFile(name string, raw []byte, opts Options) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return NormalizeWorkbook(raw, opts)
	case ".tsv":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
	}
	return Normalize(raw, opts)
}

// Normalize decodes delimited text whose first record is the header.
// Input with no header yields an empty dataset.
func Normalize(raw []byte, opts Options) (*Dataset, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("%w: input is not valid UTF-8", ErrParse)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = ','
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		records = append(records, rec)
	}
	return fromRecords(records, opts)
}

func fromRecords(records [][]string, opts Options) (*Dataset, error) {
	ds := &Dataset{
		Columns:       []string{},
		Rows:          []RawRow{},
		questionToken: opts.QuestionToken,
	}
	if len(records) > 0 {
		ds.Columns = headerNames(records[0])
		for _, rec := range records[1:] {
			if blank(rec) {
				continue
			}
			row := make(RawRow, len(ds.Columns))
			for i, col := range ds.Columns {
				if i < len(rec) {
					row[col] = rec[i]
				} else {
					row[col] = ""
				}
			}
			ds.Rows = append(ds.Rows, row)
		}
	}

	if opts.RequireRows && len(ds.Rows) == 0 {
		return nil, ErrEmptyInput
	}
	return ds, nil
}

// headerNames trims header cells, names empty ones by position and suffixes
// repeats so no column shadows another. A real header keeps its name; a
// generated name never takes one that appears elsewhere in the header.
func headerNames(header []string) []string {
	cols := make([]string, len(header))
	reserved := make(map[string]bool, len(header))
	for _, h := range header {
		if name := strings.TrimSpace(h); name != "" {
			reserved[name] = true
		}
	}
	used := make(map[string]bool, len(header))
	for i, h := range header {
		own := strings.TrimSpace(h)
		base := own
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}
		name := base
		for n := 2; used[name] || (name != own && reserved[name]); n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		cols[i] = name
	}
	return cols
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
