package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/service"
	"github.com/vedran77/skillshare/internal/transport/http/middleware"
	"github.com/vedran77/skillshare/pkg/validator"
)

type UserHandler struct {
	userService *service.UserService
	log         logging.Logger
}

func NewUserHandler(userService *service.UserService, log logging.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), id)
	if err != nil {
		h.writeUserError(w, r, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeUserError(w, r, "get me", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfile(input.Name, input.Email, input.Bio, input.SkillsOffering, input.SkillsSeeking); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeUserError(w, r, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) AvatarUpload(w http.ResponseWriter, r *http.Request) {
	var input service.AvatarUploadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	upload, err := h.userService.AvatarUploadURL(r.Context(), middleware.GetUserID(r.Context()), input.Filename)
	if err != nil {
		h.writeUserError(w, r, "avatar upload", err)
		return
	}

	writeJSON(w, http.StatusOK, upload)
}

func (h *UserHandler) SetAvatar(w http.ResponseWriter, r *http.Request) {
	var input service.SetAvatarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	profile, err := h.userService.SetAvatar(r.Context(), middleware.GetUserID(r.Context()), input.Key)
	if err != nil {
		h.writeUserError(w, r, "set avatar", err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
	case errors.Is(err, service.ErrAvatarsDisabled):
		writeError(w, http.StatusServiceUnavailable, "AVATARS_DISABLED", "Profile pictures are not available")
	case errors.Is(err, service.ErrUnsupportedImage):
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_IMAGE", "Only png, jpg, jpeg and gif images are allowed")
	case errors.Is(err, service.ErrInvalidAvatarKey):
		writeError(w, http.StatusBadRequest, "INVALID_AVATAR_KEY", "Avatar key was not issued for this user")
	default:
		internalError(w, r, h.log, op, err)
	}
}
