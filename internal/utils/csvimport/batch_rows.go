// Package csvimport reads batch rows from uploaded CSV files.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
)

// MaxRows bounds a single upload.
const MaxRows = 10000

// columns maps csv header names to BatchRow field indexes, built from the
// struct tags.
var columns = func() map[string]int {
	t := reflect.TypeOf(domain.BatchRow{})
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get("csv"); name != "" && name != "-" {
			m[name] = i
		}
	}
	return m
}()

var requiredColumns = []string{"account_number", "amount", "reference"}

// ReadBatchRows parses a CSV with a header line. RowNumber is the line in
// the file, so the first data row is 2. Blank lines are skipped.
func ReadBatchRows(r io.Reader) ([]domain.BatchRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: file is empty", apperrors.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", apperrors.ErrValidation, err)
	}

	index := make(map[int]int, len(header)) // csv column -> struct field
	present := make(map[string]bool, len(header))
	for col, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := columns[name]; ok {
			index[col] = field
			present[name] = true
		}
	}
	var missing []string
	for _, name := range requiredColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: header is missing columns %s", apperrors.ErrMissingField, strings.Join(missing, ", "))
	}

	var rows []domain.BatchRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(record) {
			continue
		}
		if len(rows) == MaxRows {
			return nil, fmt.Errorf("%w: more than %d rows", apperrors.ErrValidation, MaxRows)
		}

		row := domain.BatchRow{RowNumber: line}
		v := reflect.ValueOf(&row).Elem()
		for col, value := range record {
			if field, ok := index[col]; ok {
				v.Field(field).SetString(strings.TrimSpace(value))
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: file has no data rows", apperrors.ErrValidation)
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
