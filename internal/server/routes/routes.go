// Package routes holds the HTTP handlers of the read facade and the job
// submission endpoints.
package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

// statusForError maps engine error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrIncompatibleMerge):
		return http.StatusConflict
	case errors.Is(err, common.ErrAmbiguousIdentity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
