package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/camden-git/labelloopbackend/logging"
	"github.com/camden-git/labelloopbackend/services"
)

// Error codes used in APIErrorDetail.Code
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeInvalidReference = "invalid_reference"
	CodeInternal         = "internal_error"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// APIErrorResponse represents the standardized error response body.
// Detail repeats the first error's message for clients reading a flat field.
type APIErrorResponse struct {
	Detail string           `json:"detail"`
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Detail: detail,
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// writeValidationError answers 400 for malformed input
func writeValidationError(w http.ResponseWriter, detail string) {
	WriteAPIError(w, http.StatusBadRequest, CodeValidation, detail)
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything else is
// logged and answered with a generic 500 carrying fallback.
func writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		WriteAPIError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		WriteAPIError(w, http.StatusBadRequest, CodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidReference):
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidReference, err.Error())
	case errors.Is(err, services.ErrNothingToUpdate):
		WriteAPIError(w, http.StatusBadRequest, CodeValidation, err.Error())
	default:
		logging.Named("http").Errorw(fallback, "error", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeInternal, fallback)
	}
}
