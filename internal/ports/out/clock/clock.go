package clock

import "time"

// Clock provides time to the application. An interface keeps date-sensitive
// rules (term end dates, invoice due dates, active windows) deterministic in
// tests.
type Clock interface {
	Now() time.Time
}
