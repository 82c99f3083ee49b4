package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/service"
	"github.com/vedran77/skillshare/internal/transport/http/middleware"
	"github.com/vedran77/skillshare/pkg/validator"
)

type WorkshopHandler struct {
	workshopService *service.WorkshopService
	log             logging.Logger
}

func NewWorkshopHandler(workshopService *service.WorkshopService, log logging.Logger) *WorkshopHandler {
	return &WorkshopHandler{workshopService: workshopService, log: log}
}

func (h *WorkshopHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.workshopService.List(r.Context(), queryInt(r, "page"))
	if err != nil {
		internalError(w, r, h.log, "list workshops", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *WorkshopHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.workshopService.ListScheduled(r.Context())
	if err != nil {
		internalError(w, r, h.log, "list scheduled workshops", err)
		return
	}
	if workshops == nil {
		workshops = []domain.WorkshopSummary{}
	}

	writeJSON(w, http.StatusOK, workshops)
}

func (h *WorkshopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateWorkshopInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	errs := validator.ValidateWorkshop(input.Title, input.Description, input.Category,
		input.MaxParticipants, input.DateTime, input.Location, domain.WorkshopCategories)
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	workshop, err := h.workshopService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeWorkshopError(w, r, "create workshop", err)
		return
	}

	writeJSON(w, http.StatusCreated, workshop)
}

func (h *WorkshopHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.workshopService.Get(r.Context(), id)
	if err != nil {
		h.writeWorkshopError(w, r, "get workshop", err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *WorkshopHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var input service.UpdateStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if !input.Status.Valid() {
		errs := make(validator.ValidationErrors)
		errs.Add("status", "Status must be one of: scheduled, completed, cancelled")
		writeValidationErrors(w, errs)
		return
	}

	workshop, err := h.workshopService.UpdateStatus(r.Context(), middleware.GetUserID(r.Context()), id, input.Status)
	if err != nil {
		h.writeWorkshopError(w, r, "update workshop status", err)
		return
	}

	writeJSON(w, http.StatusOK, workshop)
}

func (h *WorkshopHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.WorkshopID == uuid.Nil {
		errs := make(validator.ValidationErrors)
		errs.Add("workshop_id", "Workshop ID is required")
		writeValidationErrors(w, errs)
		return
	}

	reg, err := h.workshopService.Register(r.Context(), middleware.GetUserID(r.Context()), input.WorkshopID)
	if err != nil {
		h.writeWorkshopError(w, r, "register for workshop", err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

func (h *WorkshopHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	matches, err := h.workshopService.Recommend(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeWorkshopError(w, r, "recommend workshops", err)
		return
	}

	writeJSON(w, http.StatusOK, matches)
}

func (h *WorkshopHandler) writeWorkshopError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrWorkshopNotFound):
		writeError(w, http.StatusNotFound, "WORKSHOP_NOT_FOUND", "Workshop not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrAlreadyRegistered):
		writeError(w, http.StatusBadRequest, "ALREADY_REGISTERED", "You are already registered for this workshop")
	case errors.Is(err, service.ErrWorkshopFull):
		writeError(w, http.StatusBadRequest, "WORKSHOP_FULL", "This workshop is full")
	case errors.Is(err, service.ErrOwnWorkshop):
		writeError(w, http.StatusBadRequest, "OWN_WORKSHOP", "You cannot register for your own workshop")
	case errors.Is(err, service.ErrWorkshopClosed):
		writeError(w, http.StatusBadRequest, "WORKSHOP_CLOSED", "This workshop is not open for registration")
	case errors.Is(err, service.ErrNotWorkshopHost):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the host can change this workshop")
	case errors.Is(err, service.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", "Only scheduled workshops can be completed or cancelled")
	default:
		internalError(w, r, h.log, op, err)
	}
}
