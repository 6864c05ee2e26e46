package payload

import (
	"fmt"

	"github.com/zeebo/errs"
)

var (
	// Error is the class of I/O and format errors returned by this package.
	Error = errs.Class("payload")

	// Malformed is the class of structural violations in a response.
	Malformed = errs.Class("malformed payload")
)

// ServiceError is a failure reported by the service in place of a result.
type ServiceError struct {
	Message string
	Code    int64
}

func (e *ServiceError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("service error: %s", e.Message)
	}

	return fmt.Sprintf("service error %d: %s", e.Code, e.Message)
}
