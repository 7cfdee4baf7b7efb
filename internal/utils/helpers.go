package utils

import (
	"encoding/json"
	"net/http"

	"podium/internal/models"
)

// --- Helper Functions ---
func WriteJSON(w http.ResponseWriter, code int, resp models.Resp) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(resp)
}
