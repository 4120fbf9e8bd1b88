package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"ctacte-backend/internal/statement/infrastructure/postgres"
)

// CustomerDirectory lists customers with documents loaded today.
type CustomerDirectory interface {
	LoadedToday(ctx context.Context) ([]postgres.CustomerContact, error)
}

// CustomersHandler serves GET /api/v1/customers/today.
type CustomersHandler struct {
	directory CustomerDirectory
	logger    *logrus.Logger
}

// NewCustomersHandler constructs a handler.
func NewCustomersHandler(directory CustomerDirectory, logger *logrus.Logger) (*CustomersHandler, error) {
	if directory == nil {
		return nil, errors.New("customers handler: nil directory")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CustomersHandler{directory: directory, logger: logger}, nil
}

func (h *CustomersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	contacts, err := h.directory.LoadedToday(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("customer query failed")
		respondError(w, http.StatusInternalServerError, "customer query failed")
		return
	}
	if len(contacts) == 0 {
		respondError(w, http.StatusNotFound, "no customers with documents loaded today")
		return
	}

	names := make([]string, 0, len(contacts))
	emails := make([]string, 0, len(contacts))
	salespeople := make([]string, 0, len(contacts))
	for _, c := range contacts {
		names = append(names, c.Name)
		emails = append(emails, c.Email)
		salespeople = append(salespeople, c.Salesperson)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]string{
		"razonesSociales": names,
		"emails":          emails,
		"vendedores":      salespeople,
	})
}
