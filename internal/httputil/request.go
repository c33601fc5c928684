package httputil

import (
	"fmt"
	"net/http"

	gojson "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// RequiredQueryParameter reads one query parameter from the request. If
// it is missing or blank, a 400 with the reasoning is written to the
// ResponseWriter and false is returned.
func RequiredQueryParameter(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		http.Error(w, fmt.Sprintf("expected %s query parameter", key), http.StatusBadRequest)
		return "", false
	}
	return value, true
}

// WriteJSON encodes v into the response. Encoding failures are logged
// rather than surfaced since the status line is already gone.
func WriteJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := gojson.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("writing JSON response")
	}
}
