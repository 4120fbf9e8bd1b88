package statement

import "time"

// Clock supplies the logical "today" used for due-date classification and
// document date stamps. Injected so batch runs are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
