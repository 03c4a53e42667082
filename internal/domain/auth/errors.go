package auth

import (
	"fmt"
	"net/http"
)

// UpstreamError is a non-2xx answer from the identity service.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("identity service returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("identity service returned %d: %s", e.Status, e.Message)
}
