package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/service"
	"github.com/vedran77/skillshare/internal/transport/http/middleware"
)

type AdminHandler struct {
	adminService *service.AdminService
	log          logging.Logger
}

func NewAdminHandler(adminService *service.AdminService, log logging.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, log: log}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.PlatformStats(r.Context())
	if err != nil {
		internalError(w, r, h.log, "platform stats", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) Activity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.adminService.RecentActivity(r.Context(), queryInt(r, "limit"))
	if err != nil {
		internalError(w, r, h.log, "recent activity", err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		internalError(w, r, h.log, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) Workshops(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.adminService.ListWorkshops(r.Context())
	if err != nil {
		internalError(w, r, h.log, "list workshops", err)
		return
	}

	writeJSON(w, http.StatusOK, workshops)
}

func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.SetRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.adminService.SetRole(r.Context(), middleware.GetUserID(r.Context()), id, input.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "INVALID_ROLE", "Role must be member or admin")
		case errors.Is(err, service.ErrCannotChangeOwnRole):
			writeError(w, http.StatusBadRequest, "OWN_ROLE", "You cannot change your own role")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			internalError(w, r, h.log, "set role", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}
