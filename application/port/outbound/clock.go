package outbound

import "time"

// Clock provides wall clock time for entry timestamps
type Clock interface {
	Now() time.Time
}
