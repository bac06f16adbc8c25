package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/gorilla/mux"
)

// AdminHandler exposes the operator's read-only view of the marketplace:
// the same dashboard, user, job and metric queries the chat admin commands
// serve, as JSON.
type AdminHandler struct {
	reports *report.Service
}

// NewAdminHandler creates a new AdminHandler with required dependencies.
func NewAdminHandler(reports *report.Service) *AdminHandler {
	return &AdminHandler{reports: reports}
}

func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.reports.Dashboard(r.Context())
	if err != nil {
		logger.Error("dashboard query failed", slog.Any("err", err))
		http.Error(w, "Error loading dashboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.reports.Users(r.Context())
	if err != nil {
		logger.Error("user query failed", slog.Any("err", err))
		http.Error(w, "Error loading users", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	detail, err := h.reports.UserDetail(r.Context(), id)
	if err != nil {
		logger.Error("user detail query failed", slog.Any("err", err))
		http.Error(w, "Error loading user", http.StatusInternalServerError)
		return
	}
	if detail == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *AdminHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.reports.Jobs(r.Context())
	if err != nil {
		logger.Error("job query failed", slog.Any("err", err))
		http.Error(w, "Error loading jobs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

func (h *AdminHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	weekly, err := h.reports.Weekly(r.Context())
	if err != nil {
		logger.Error("weekly query failed", slog.Any("err", err))
		http.Error(w, "Error loading metrics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, weekly)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("err", err))
	}
}
