// Package app assembles the SkillShare server from its configuration and
// runs it until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vedran77/skillshare/internal/auth"
	"github.com/vedran77/skillshare/internal/config"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/mail"
	"github.com/vedran77/skillshare/internal/repository"
	"github.com/vedran77/skillshare/internal/service"
	"github.com/vedran77/skillshare/internal/storage"
	"github.com/vedran77/skillshare/internal/transport/http/handlers"
	"github.com/vedran77/skillshare/internal/transport/ws"
	"golang.org/x/sync/errgroup"
)

const ShutdownTimeout = 10 * time.Second

type App struct {
	cfg     *config.Config
	log     logging.Logger
	hub     *ws.Hub
	handler http.Handler
}

// New wires services, handlers and the websocket hub over store.
func New(ctx context.Context, cfg *config.Config, store *repository.Store, log logging.Logger) (*App, error) {
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL)
	reset := auth.NewResetTokens(cfg.JWTSecret, cfg.ResetSalt, cfg.ResetTokenTTL)

	var mailer mail.Mailer
	if cfg.MailEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		log.Warn(ctx, "SMTP_HOST not set, reset mails are only logged")
		mailer = mail.NewLogMailer(log)
	}

	// Left as a nil interface when storage is off; a typed nil would pass
	// the service's nil check.
	var avatars service.AvatarStorage
	if cfg.StorageEnabled() {
		s3, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("avatar storage: %w", err)
		}
		avatars = s3
	}

	// Services
	authService := service.NewAuthService(store.Users, tokens, reset, mailer, cfg.PublicURL, log)
	userService := service.NewUserService(store.Users, avatars, log)
	workshopService := service.NewWorkshopService(store.Workshops, store.Users, log)
	articleService := service.NewArticleService(store.Articles, store.Users, log)
	adminService := service.NewAdminService(store.Users, store.Workshops, log)

	// Real-time
	hub := ws.NewHub(log)
	notifier := ws.NewHubNotifier(hub)
	workshopService.SetNotifier(notifier)
	articleService.SetNotifier(notifier)

	handler := handlers.NewRouter(handlers.RouterDeps{
		Auth:       handlers.NewAuthHandler(authService, log),
		Users:      handlers.NewUserHandler(userService, log),
		Workshops:  handlers.NewWorkshopHandler(workshopService, log),
		Articles:   handlers.NewArticleHandler(articleService, log),
		Admin:      handlers.NewAdminHandler(adminService, log),
		Tokens:     tokens,
		Roles:      userService,
		WS:         ws.ServeWS(hub, tokens, wsOrigins(cfg.CORSOrigin)),
		CORSOrigin: cfg.CORSOrigin,
		Log:        log,
	})

	return &App{cfg: cfg, log: log, hub: hub, handler: handler}, nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP and the websocket hub until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.cfg.ServerPort,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.hub.Run(gctx)
	})

	g.Go(func() error {
		a.log.Info(gctx, "starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info(context.Background(), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// wsOrigins turns the CORS origin into the host pattern websocket.Accept
// matches against.
func wsOrigins(origin string) []string {
	if origin == "" || origin == "*" {
		return []string{"*"}
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return []string{origin}
	}
	return []string{u.Host}
}
