package handler

import (
	"net/http"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
