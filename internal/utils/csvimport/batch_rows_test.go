package csvimport

import (
	"strings"
	"testing"

	"github.com/SscSPs/core_banking_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBatchRows(t *testing.T) {
	input := "Account_Number,amount,reference,destination_account,description\n" +
		"ACC000001, 100.50 ,PAY-1,ACC000002,rent\n" +
		"\n" +
		"ACC000003,20,PAY-2,,\n"

	rows, err := ReadBatchRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].RowNumber)
	assert.Equal(t, "ACC000001", rows[0].Account)
	assert.Equal(t, "100.50", rows[0].Amount)
	assert.Equal(t, "PAY-1", rows[0].Reference)
	assert.Equal(t, "ACC000002", rows[0].DestinationAccount)
	assert.Equal(t, "rent", rows[0].Description)

	assert.Equal(t, 4, rows[1].RowNumber, "blank lines keep file line numbers")
	assert.Empty(t, rows[1].DestinationAccount)
}

func TestReadBatchRows_OptionalColumnsAbsent(t *testing.T) {
	rows, err := ReadBatchRows(strings.NewReader("reference,amount,account_number\nR1,5,ACC1\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ACC1", rows[0].Account)
	assert.Equal(t, "R1", rows[0].Reference)
}

func TestReadBatchRows_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty file", "", apperrors.ErrValidation},
		{"missing columns", "account_number,amount\nACC1,5\n", apperrors.ErrMissingField},
		{"header only", "account_number,amount,reference\n", apperrors.ErrValidation},
		{"bad quoting", "account_number,amount,reference\n\"ACC1,5,R\n", apperrors.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBatchRows(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
