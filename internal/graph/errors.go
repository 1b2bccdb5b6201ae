package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-success Graph response
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: graph returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a Graph 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is a Graph 401, which means the bearer
// token was rejected
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
