package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const (
	codeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	codeInvalidRequest     = "INVALID_REQUEST"
	codeBackendUnavailable = "BACKEND_UNAVAILABLE"
	codeCountFailed        = "COUNT_FAILED"
)

// errorResponse matches the error body of the main API so CounterClient can
// surface the message.
type errorResponse struct {
	Ok      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON rejects unknown fields and anything after the first value.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("count request must hold a single json object")
		}
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Ok: false, Code: code, Message: message})
}
