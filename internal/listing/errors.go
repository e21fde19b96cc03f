// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"fmt"
	"net/http"
)

// NetworkError is a transport failure: the request never produced an HTTP
// response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a response the backend produced but that carries no
// usable result: a non-2xx status, success:false or a malformed payload.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Status >= 200 && e.Status < 300 {
		return "backend error: " + e.Message
	}
	if e.Message == "" {
		return fmt.Sprintf("backend returned HTTP %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned HTTP %d: %s", e.Status, e.Message)
}
