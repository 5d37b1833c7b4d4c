/*
Package resp provides helpers for writing the standardized JSON envelope.

Every JSON response carries a business code, a message and optional data.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"userdir/internal/pkg/errs"
	"userdir/internal/pkg/logx"
)

// JSONResponse defines the standardized JSON response structure returned to clients.
type JSONResponse struct {
	// Code is the business status code (0 for success, see errs package otherwise).
	Code int `json:"code"`

	// Message is the client-friendly status description or error message.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the Content-Type and writes payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a 200 OK envelope wrapping data.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondStatus(w, r, http.StatusOK, data)
}

// RespondStatus sends a success envelope with a non-default status (e.g. 201 Created).
func RespondStatus(w http.ResponseWriter, r *http.Request, httpStatus int, data any) {
	res := JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	}
	RespondJSON(w, r, httpStatus, res)
}

// RespondError sends the envelope for customErr.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	RespondErrorData(w, r, customErr, nil)
}

// RespondErrorData sends the envelope for customErr with an attached payload,
// such as per-field validation messages.
func RespondErrorData(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError, data any) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
		Data:    data,
	}
	RespondJSON(w, r, customErr.Status, res)
}
