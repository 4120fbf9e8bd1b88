package interfaces

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	statement "ctacte-backend/internal/statement/domain"
	"ctacte-backend/internal/statement/infrastructure/postgres"
)

func TestExportMovementsXLSX(t *testing.T) {
	history := stubHistory{rows: map[string][]statement.Movement{
		"ACME SA": {
			{
				CustomerCode: "C001", CustomerName: "ACME SA",
				IssueDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
				DocNumber: "FC00010001",
				Debit:     amt(100000), Balance: amt(100000),
			},
		},
	}}
	h := NewExportMovementsHandler(history, fixedClock{t: time.Date(2025, 1, 22, 9, 0, 0, 0, time.UTC)}, 45, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/movements.xlsx?customer=ACME+SA", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ACME_SA.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("movimientos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, statement.ColCustomerCode, rows[0][0])
	assert.Equal(t, "FC00010001", rows[1][4])
}

func TestExportMovementsRequiresCustomer(t *testing.T) {
	h := NewExportMovementsHandler(stubHistory{}, nil, 45, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/movements.xlsx", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportMovementsNoRows(t *testing.T) {
	h := NewExportMovementsHandler(stubHistory{}, nil, 45, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/movements.xlsx?customer=NADIE", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportMovementsQueryError(t *testing.T) {
	h := NewExportMovementsHandler(stubHistory{err: errors.New("db down")}, nil, 45, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/movements.xlsx?customer=ACME+SA", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type stubDirectory struct {
	contacts []postgres.CustomerContact
	err      error
}

func (s stubDirectory) LoadedToday(context.Context) ([]postgres.CustomerContact, error) {
	return s.contacts, s.err
}

func TestCustomersLoadedToday(t *testing.T) {
	dir := stubDirectory{contacts: []postgres.CustomerContact{
		{Name: "ACME SA", Email: "acme@example.com", Salesperson: "PEREZ"},
		{Name: "BETA SRL", Email: "", Salesperson: "GOMEZ"},
	}}
	h, err := NewCustomersHandler(dir, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"razonesSociales": ["ACME SA", "BETA SRL"],
		"emails": ["acme@example.com", ""],
		"vendedores": ["PEREZ", "GOMEZ"]
	}`, rec.Body.String())
}

func TestCustomersLoadedTodayEmpty(t *testing.T) {
	h, err := NewCustomersHandler(stubDirectory{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomersMethodNotAllowed(t *testing.T) {
	h, err := NewCustomersHandler(stubDirectory{}, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers/today", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
