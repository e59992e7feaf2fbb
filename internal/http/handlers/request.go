package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/cabot-property-api/internal/http/respond"
)

const maxBodyBytes = 1 << 20

const (
	msgInternal         = "Internal server error"
	msgMethodNotAllowed = "Method not allowed"
	msgUnauthorized     = "Unauthorized"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	respond.Error(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
