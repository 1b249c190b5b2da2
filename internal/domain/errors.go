// backend-go/internal/domain/errors.go
package domain

import "errors"

var (
	// ErrInventoryFetch marks a failed catalog or cost fetch. The report
	// cannot be produced without it.
	ErrInventoryFetch = errors.New("inventory fetch failed")
	// ErrOrdersFetch marks a failed order history fetch.
	ErrOrdersFetch = errors.New("orders fetch failed")
	// ErrProductNotFound is returned when no metadata exists for a product id.
	ErrProductNotFound = errors.New("product not found")
)
