package handlers

import (
	"net/http"

	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/transport/http/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Workshops *WorkshopHandler
	Articles  *ArticleHandler
	Admin     *AdminHandler

	Tokens middleware.TokenParser
	Roles  middleware.RoleChecker
	// WS serves /ws when set.
	WS http.Handler

	CORSOrigin string
	Log        logging.Logger
}

// NewRouter registers every API route and wraps the mux in CORS and
// request logging.
func NewRouter(d RouterDeps) http.Handler {
	auth := middleware.Auth(d.Tokens)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireAdmin(d.Roles, d.Log)(h))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", d.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", d.Auth.Login)
	mux.HandleFunc("POST /api/v1/auth/password-reset", d.Auth.RequestPasswordReset)
	mux.HandleFunc("POST /api/v1/auth/password-reset/confirm", d.Auth.ConfirmPasswordReset)
	mux.HandleFunc("GET /api/v1/users/{id}", d.Users.Get)
	mux.HandleFunc("GET /api/v1/workshops", d.Workshops.List)
	mux.HandleFunc("GET /api/v1/workshops/scheduled", d.Workshops.ListScheduled)
	mux.HandleFunc("GET /api/v1/workshops/{id}", d.Workshops.Get)
	mux.HandleFunc("GET /api/v1/articles", d.Articles.List)
	mux.HandleFunc("GET /api/v1/articles/{id}", d.Articles.Get)

	// Protected - Profile
	mux.Handle("GET /api/v1/me", user(d.Users.Me))
	mux.Handle("PATCH /api/v1/me", user(d.Users.UpdateMe))
	mux.Handle("POST /api/v1/me/avatar", user(d.Users.AvatarUpload))
	mux.Handle("PUT /api/v1/me/avatar", user(d.Users.SetAvatar))
	mux.Handle("GET /api/v1/me/recommendations", user(d.Workshops.Recommendations))

	// Protected - Workshops
	mux.Handle("POST /api/v1/workshops", user(d.Workshops.Create))
	mux.Handle("PATCH /api/v1/workshops/{id}/status", user(d.Workshops.UpdateStatus))
	mux.Handle("POST /api/v1/registrations", user(d.Workshops.Register))

	// Protected - Knowledge base
	mux.Handle("POST /api/v1/articles", user(d.Articles.Create))
	mux.Handle("PATCH /api/v1/articles/{id}", user(d.Articles.Update))
	mux.Handle("POST /api/v1/articles/{id}/comments", user(d.Articles.AddComment))

	// Admin
	mux.Handle("GET /api/v1/admin/stats", admin(d.Admin.Stats))
	mux.Handle("GET /api/v1/admin/activity", admin(d.Admin.Activity))
	mux.Handle("GET /api/v1/admin/users", admin(d.Admin.Users))
	mux.Handle("GET /api/v1/admin/workshops", admin(d.Admin.Workshops))
	mux.Handle("PUT /api/v1/admin/users/{id}/role", admin(d.Admin.SetRole))

	if d.WS != nil {
		mux.Handle("GET /ws", d.WS)
	}

	return middleware.RequestLogger(d.Log)(middleware.CORS(d.CORSOrigin)(mux))
}
