package order

import "strings"

// Status is an order lifecycle state as the host names it. Statuses are
// opaque tokens here: apart from the completed-aggregation rule in statussync,
// no transition is validated by this core.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusOnHold     Status = "on-hold"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

// statusPrefix is the host's storage prefix. Every persisted status string
// must carry it; in-memory comparisons use the trimmed form.
const statusPrefix = "wc-"

// Normalize returns s with the host prefix applied. It must be called at
// every write boundary (order save, sync row, ledger row).
func Normalize(s Status) Status {
	if strings.HasPrefix(string(s), statusPrefix) {
		return s
	}
	return Status(statusPrefix + string(s))
}

// Trim strips the host prefix so two statuses can be compared regardless of
// which side of a write boundary they came from.
func Trim(s Status) Status {
	return Status(strings.TrimPrefix(string(s), statusPrefix))
}

// Is reports whether a and b name the same status, ignoring the prefix.
func Is(a, b Status) bool {
	return Trim(a) == Trim(b)
}
