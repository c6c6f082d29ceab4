package handlers

import (
	"net/http"

	"github.com/jmalik/taskly-backend/api"
)

// APIDocs serves the embedded OpenAPI document.
func APIDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(api.OpenAPI)
}
