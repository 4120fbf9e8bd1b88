package statement

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData signals that the input source contained no movements at all.
// It is the only condition fatal to a whole batch run.
var ErrNoData = errors.New("statement: no input data")

// SchemaError reports required columns missing from a customer's slice.
// It is recoverable: the orchestrator skips the customer and continues.
type SchemaError struct {
	Customer string
	Missing  []string
}

func (e *SchemaError) Error() string {
	if e.Customer == "" {
		return fmt.Sprintf("statement: missing required columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("statement: customer %q: missing required columns: %s", e.Customer, strings.Join(e.Missing, ", "))
}
