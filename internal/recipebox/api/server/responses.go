package server

import (
	"encoding/json"
	"net/http"
)

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)

	enc := json.NewEncoder(w)
	if err := enc.Encode(payload); err != nil {
		w.Write(Error{Err: err.Error()}.ToJSON()) //nolint:errcheck
	}
}
