// Точка входа портала фреймворка управления проектами.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// инициализирует Google OIDC (PKCE + проверка ID-токенов по JWKS),
// собирает сервисный слой и HTTP-обработчики, запускает сервер
// с авторизационным шлюзом и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/pmoffice/framework-portal/internal/api/handlers"
	"github.com/pmoffice/framework-portal/internal/api/middleware"
	"github.com/pmoffice/framework-portal/internal/config"
	"github.com/pmoffice/framework-portal/internal/database"
	"github.com/pmoffice/framework-portal/internal/repository"
	"github.com/pmoffice/framework-portal/internal/server"
	"github.com/pmoffice/framework-portal/internal/service"
	"github.com/pmoffice/framework-portal/internal/ui/auth"
	uihandlers "github.com/pmoffice/framework-portal/internal/ui/handlers"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Портал запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД (схема + seed-контент фреймворка)
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 5. Repositories
	phaseRepo := repository.NewPhaseRepository(pool)
	ceremonyRepo := repository.NewCeremonyRepository(pool)
	toolRepo := repository.NewToolRepository(pool)
	pageRepo := repository.NewPageRepository(pool)
	assignmentRepo := repository.NewRoleAssignmentRepository(pool)
	settingsRepo := repository.NewSettingsRepository(pool)
	domainRepo := repository.NewAllowedDomainRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// 6. Services
	phasesSvc := service.NewPhaseService(phaseRepo, logger)
	ceremoniesSvc := service.NewCeremonyService(ceremonyRepo, logger)
	toolsSvc := service.NewToolService(toolRepo, logger)
	pagesSvc := service.NewPageService(pageRepo, logger)
	assignmentsSvc := service.NewRoleAssignmentService(assignmentRepo, logger)
	settingsSvc := service.NewSettingsService(settingsRepo, phaseRepo, userRepo, logger)
	domainsSvc := service.NewDomainService(domainRepo, logger)
	identitySvc := service.NewIdentityService(userRepo, domainRepo,
		cfg.AdminEmails, cfg.AdminDomains, logger)

	// 7. Session Manager — шифрование сессий (AES-256-GCM)
	sessionMgr, err := auth.NewSessionManager(cfg.SessionSecret, cfg.SecureCookie)
	if err != nil {
		logger.Error("Ошибка создания Session Manager", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("FP_SESSION_SECRET не задан, сессии не сохраняются между рестартами")
	}

	// 8. Google OIDC: клиент авторизации + верификатор ID-токенов
	oidcClient := auth.NewOIDCClient(auth.OIDCConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		AuthorizeURL: cfg.OIDCAuthorizeURL,
		TokenURL:     cfg.OIDCTokenURL,
	})

	verifier, err := auth.NewIDTokenVerifier(
		cfg.OIDCJWKSURL,
		cfg.OIDCIssuer,
		cfg.GoogleClientID,
		cfg.JWKSRefreshInterval,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания верификатора ID-токенов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Google OIDC инициализирован",
		slog.String("jwks_url", cfg.OIDCJWKSURL),
		slog.String("issuer", cfg.OIDCIssuer),
	)

	// 9. Readiness checkers (PostgreSQL + JWKS Google)
	pgChecker := database.NewReadinessChecker(pool)
	jwksChecker := auth.NewJWKSReadinessChecker(cfg.OIDCJWKSURL, 5*time.Second)
	healthHandler := handlers.NewHealthHandler(pgChecker, jwksChecker)

	// 10. API handler
	apiHandler := handlers.NewAPIHandler(
		phasesSvc,
		ceremoniesSvc,
		toolsSvc,
		pagesSvc,
		assignmentsSvc,
		settingsSvc,
		domainsSvc,
		logger,
	)

	// 11. Auth handler — signin/callback/signout/error
	authHandler := uihandlers.NewAuthHandler(
		oidcClient, verifier, sessionMgr, identitySvc,
		cfg.RedirectURL(), cfg.SecureCookie,
		logger,
	)

	// 12. Авторизационный шлюз
	sessionAuth := middleware.NewSessionAuth(sessionMgr, logger)

	// 13. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, healthHandler, authHandler, sessionAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Портал остановлен")
}
