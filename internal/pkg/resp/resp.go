/*
Package resp provides helpers for writing the standardized JSON response envelope.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"studyroom/internal/pkg/errs"
	"studyroom/internal/pkg/logx"
)

// JSONResponse is the envelope every HTTP endpoint answers with.
type JSONResponse struct {
	// Code is 0 on success, otherwise an errs business code.
	Code int `json:"code"`

	Message string `json:"message"`

	Data any `json:"data,omitempty"`
}

// RespondJSON sets the JSON headers, writes httpStatus and the encoded payload.
func RespondJSON(w http.ResponseWriter, httpStatus int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(response)
}

// RespondSuccess sends data with HTTP 200 and code 0.
func RespondSuccess(w http.ResponseWriter, data any) {
	RespondJSON(w, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondError sends the business code and message of customErr with its HTTP status.
func RespondError(w http.ResponseWriter, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
