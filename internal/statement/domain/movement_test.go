package statement

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tableHeader = []string{
	ColCustomerCode, ColCustomerName, ColSalesperson, ColIssueDate,
	ColDocNumber, ColDueDate, ColSaleCondition, ColDebit, ColCredit,
	ColBalance, ColEnabled,
}

func TestParseRowsEmptyTable(t *testing.T) {
	_, err := ParseRows(tableHeader, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseRowsMissingColumns(t *testing.T) {
	header := []string{ColCustomerName, ColIssueDate, ColDocNumber}
	_, err := ParseRows(header, [][]string{{"ACME", "2025-01-01", "FC A0001"}})

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Missing, ColDueDate)
	assert.Contains(t, schemaErr.Missing, ColBalance)
	assert.NotContains(t, schemaErr.Missing, ColCustomerName)
}

func TestParseRowsTypedFields(t *testing.T) {
	rows := [][]string{
		{"C001", "ACME SA", "PEREZ", "2025-01-17T00:00:00.000Z", "FC A00010001", "17/02/2025", "CTA CTE", "1.234,50", "", "1.234,50", "1"},
	}
	movements, err := ParseRows(tableHeader, rows)
	require.NoError(t, err)
	require.Len(t, movements, 1)

	m := movements[0]
	assert.Equal(t, "C001", m.CustomerCode)
	assert.Equal(t, "ACME SA", m.CustomerName)
	assert.Equal(t, day(2025, 1, 17), m.IssueDate)
	assert.Equal(t, "FC00010001", m.DocNumber)
	assert.Equal(t, day(2025, 2, 17), m.DueDate)
	require.True(t, m.Debit.Valid)
	assert.True(t, m.Debit.Decimal.Equal(decimal.RequireFromString("1234.50")))
	assert.False(t, m.Credit.Valid)
}

func TestParseRowsDropsDisabledRows(t *testing.T) {
	rows := [][]string{
		{"C001", "ACME SA", "PEREZ", "2025-01-10", "FC A00010001", "2025-02-10", "CTA CTE", "100,00", "", "100,00", "0"},
		{"C001", "ACME SA", "PEREZ", "2025-01-11", "FC A00010002", "2025-02-11", "CTA CTE", "200,00", "", "300,00", "1"},
		{"C001", "ACME SA", "PEREZ", "2025-01-12", "FC A00010003", "2025-02-12", "CTA CTE", "50,00", "", "350,00", ""},
	}
	movements, err := ParseRows(tableHeader, rows)
	require.NoError(t, err)
	require.Len(t, movements, 2, "disabled rows must not survive parsing; absent flag keeps the row")
	assert.Equal(t, "FC00010002", movements[0].DocNumber)
	assert.Equal(t, "FC00010003", movements[1].DocNumber)
}

func TestParseRowsShortRowDegrades(t *testing.T) {
	rows := [][]string{{"C001", "ACME SA"}}
	movements, err := ParseRows(tableHeader, rows)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.True(t, movements[0].IssueDate.IsZero())
	assert.False(t, movements[0].Balance.Valid)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-01-17", day(2025, 1, 17)},
		{"2025-01-17T00:00:00.000Z", day(2025, 1, 17)},
		{"2025-01-17 10:30:00", day(2025, 1, 17)},
		{"17/01/2025", day(2025, 1, 17)},
		{"17-01-2025", day(2025, 1, 17)},
		{"45674", day(2025, 1, 17)}, // spreadsheet serial
		{"", time.Time{}},
		{"not a date", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDate(tt.raw))
		})
	}
}

func statementRecord() Record {
	return Record{
		ColCustomerName: "ACME SA", ColIssueDate: "2025-01-10",
		ColDocNumber: "FC A00010001", ColDueDate: "2025-02-10",
		ColSaleCondition: "CTA CTE", ColDebit: "100,00",
		ColCredit: "", ColBalance: "100,00",
	}
}

func TestParseRecords(t *testing.T) {
	movements, err := ParseRecords("C001", []Record{statementRecord()})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "C001", movements[0].CustomerCode)
	assert.Equal(t, "ACME SA", movements[0].CustomerName)
	assert.Equal(t, "FC00010001", movements[0].DocNumber)
}

func TestParseRecordsNameFallback(t *testing.T) {
	records := []Record{
		{
			ColIssueDate: "2025-01-10", ColDocNumber: "FC A0001",
			ColDueDate: "2025-02-10", ColSaleCondition: "CTA CTE",
			ColDebit: "1", ColCredit: "0", ColBalance: "1",
		},
	}
	movements, err := ParseRecords("C042", records)
	require.NoError(t, err)
	assert.Equal(t, "Cliente_C042", movements[0].CustomerName)
}

func TestParseRecordsDropsDisabledRecords(t *testing.T) {
	base := statementRecord()
	disabled := statementRecord()
	disabled[ColDocNumber] = "FC A00010009"
	disabled[ColEnabled] = "false"

	movements, err := ParseRecords("C001", []Record{base, disabled})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "FC00010001", movements[0].DocNumber)
}

func TestParseRecordsSchemaError(t *testing.T) {
	records := []Record{{ColIssueDate: "2025-01-10", ColDocNumber: "FC A0001"}}
	_, err := ParseRecords("C007", records)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "C007", schemaErr.Customer)
	assert.Contains(t, schemaErr.Missing, ColBalance)
}

func TestParseRecordsEmpty(t *testing.T) {
	_, err := ParseRecords("C001", nil)
	assert.True(t, errors.Is(err, ErrNoData))
}
