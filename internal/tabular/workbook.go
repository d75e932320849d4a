package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// NormalizeWorkbook reads an .xlsx workbook. The first row of the selected
// sheet is the header.
func NormalizeWorkbook(raw []byte, opts Options) (*Dataset, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fromRecords(nil, opts)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrParse, sheet, err)
	}
	return fromRecords(rows, opts)
}
