package handler

import "net/http"

// HandleHealthz reports liveness for load balancers and the CLI.
func HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
