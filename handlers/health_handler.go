package handlers

import (
	"net/http"

	"github.com/camden-git/labelloopbackend/services"
)

type HealthHandler struct {
	Health  *services.HealthService
	AppName string
}

// Check always answers 200; a failing dependency shows up as status "degraded"
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Health.Check(r.Context()))
}

func (h *HealthHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": h.AppName + " - Welcome!"})
}
