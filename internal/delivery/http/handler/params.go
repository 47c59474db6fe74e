package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/response"

	"github.com/gorilla/mux"
)

// pathID reads a positive integer path variable
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// accessError answers the caller-identity errors every usecase may return.
// It reports false when err is something else.
func accessError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Unauthorized")
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, "Forbidden")
	default:
		return false
	}
	return true
}
