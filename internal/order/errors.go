package order

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores and catalogs when a record does not
// exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// DataIntegrityError reports a line item whose owning vendor cannot be
// resolved. It indicates an upstream product/vendor linkage bug; the split
// attempt is aborted and the error is surfaced, never retried automatically.
type DataIntegrityError struct {
	ProductID string
	ItemID    string
	Err       error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: no vendor for product %s (item %s): %v", e.ProductID, e.ItemID, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// ConfigurationError reports a hard validation failure caused by misconfigured
// marketplace data, such as a coupon with no bound products.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}
