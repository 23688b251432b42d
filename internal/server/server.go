// Пакет server — HTTP-сервер портала с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pmoffice/framework-portal/internal/api/handlers"
	"github.com/pmoffice/framework-portal/internal/api/middleware"
	"github.com/pmoffice/framework-portal/internal/config"
	uihandlers "github.com/pmoffice/framework-portal/internal/ui/handlers"
)

// Server — HTTP-сервер портала.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// sessionAuth — авторизационный шлюз (может быть nil для тестирования без auth).
func New(
	cfg *config.Config,
	logger *slog.Logger,
	api *handlers.APIHandler,
	health *handlers.HealthHandler,
	authHandler *uihandlers.AuthHandler,
	sessionAuth *middleware.SessionAuth,
) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Авторизационный шлюз: классифицирует каждый маршрут
	// (публичный / сессия / ADMIN) до обработчиков.
	if sessionAuth != nil {
		router.Use(sessionAuth.Middleware())
	}

	// Health и метрики
	router.Get("/health/live", health.HealthLive)
	router.Get("/health/ready", health.HealthReady)
	router.Get("/metrics", health.GetMetrics)

	// Вход через Google
	router.Get("/auth/signin", authHandler.HandleSignIn)
	router.Get("/auth/callback", authHandler.HandleCallback)
	router.Get("/auth/error", authHandler.HandleError)
	router.Post("/auth/signout", authHandler.HandleSignOut)

	// API портала
	router.Route("/api", func(r chi.Router) {
		r.Get("/phases", api.GetPhases)
		r.Post("/phases", api.UpdatePhase)
		r.Get("/ceremonies", api.GetCeremonies)
		r.Post("/ceremonies", api.UpdateCeremony)
		r.Get("/tools", api.GetTools)
		r.Post("/tools", api.UpsertTool)
		r.Delete("/tools", api.DeleteTool)
		r.Get("/content", api.GetContent)
		r.Post("/content", api.UpdateContent)
		r.Get("/role-assignments", api.GetRoleAssignments)
		r.Post("/role-assignments", api.UpsertRoleAssignment)
		r.Delete("/role-assignments", api.DeleteRoleAssignment)
		r.Get("/role-catalog", api.GetRoleCatalog)
		r.Get("/settings/current-phase", api.GetCurrentPhase)
		r.Post("/settings/current-phase", api.SetCurrentPhase)
		r.Get("/session", api.GetSession)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/domains", api.GetDomains)
			r.Post("/domains", api.CreateDomain)
			r.Delete("/domains", api.DeleteDomain)
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
