// verifier.go — проверка ID-токенов Google по JWKS.
// Подпись валидируется через keyfunc с фоновым обновлением ключей,
// затем проверяются issuer и audience (client_id приложения).
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// IDTokenClaims — проверенные claims из ID-токена Google.
type IDTokenClaims struct {
	// Subject — стабильный идентификатор аккаунта Google (sub).
	Subject string
	// Email — адрес электронной почты.
	Email string
	// EmailVerified — подтверждён ли email провайдером.
	EmailVerified bool
	// Name — отображаемое имя пользователя.
	Name string
}

// rawIDTokenClaims — raw claims ID-токена для парсинга.
type rawIDTokenClaims struct {
	jwt.RegisteredClaims
	// Email — электронная почта.
	Email string `json:"email"`
	// EmailVerified — флаг подтверждения email.
	EmailVerified bool `json:"email_verified"`
	// Name — отображаемое имя.
	Name string `json:"name"`
}

// IDTokenVerifier — верификатор ID-токенов через JWKS Google.
type IDTokenVerifier struct {
	jwks     keyfunc.Keyfunc
	clientID string
	issuer   string
	logger   *slog.Logger
}

// NewIDTokenVerifier создаёт верификатор с JWKS из указанного URL.
// jwksURL — JWKS endpoint Google; issuer — ожидаемый iss;
// clientID — ожидаемый aud (OAuth Client ID приложения);
// refreshInterval — интервал фонового обновления ключей.
func NewIDTokenVerifier(
	jwksURL string,
	issuer string,
	clientID string,
	refreshInterval time.Duration,
	logger *slog.Logger,
) (*IDTokenVerifier, error) {
	// JWKS Storage с фоновым обновлением.
	// NoErrorReturnFirstHTTPReq — стартуем даже если JWKS ещё недоступен.
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return &IDTokenVerifier{
		jwks:     k,
		clientID: clientID,
		issuer:   issuer,
		logger:   logger.With(slog.String("component", "id_token_verifier")),
	}, nil
}

// NewIDTokenVerifierWithKeyfunc создаёт верификатор с предоставленной
// keyfunc. Используется в тестах для подстановки mock JWKS.
func NewIDTokenVerifierWithKeyfunc(kf keyfunc.Keyfunc, issuer, clientID string, logger *slog.Logger) *IDTokenVerifier {
	return &IDTokenVerifier{
		jwks:     kf,
		clientID: clientID,
		issuer:   issuer,
		logger:   logger.With(slog.String("component", "id_token_verifier")),
	}
}

// Verify валидирует ID-токен: подпись (RS256 по JWKS), срок действия,
// issuer и audience. Google использует iss как с префиксом https://,
// так и без него, принимаются оба варианта.
func (v *IDTokenVerifier) Verify(ctx context.Context, idToken string) (*IDTokenClaims, error) {
	raw := &rawIDTokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, raw, v.jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(v.clientID),
	)
	if err != nil {
		return nil, fmt.Errorf("невалидный ID-токен: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("невалидный ID-токен")
	}

	issuer, err := raw.GetIssuer()
	if err != nil || !v.issuerAccepted(issuer) {
		return nil, fmt.Errorf("неожиданный issuer ID-токена: %q", issuer)
	}

	if raw.Subject == "" {
		return nil, errors.New("отсутствует sub в ID-токене")
	}
	if raw.Email == "" {
		return nil, errors.New("отсутствует email в ID-токене")
	}

	return &IDTokenClaims{
		Subject:       raw.Subject,
		Email:         raw.Email,
		EmailVerified: raw.EmailVerified,
		Name:          raw.Name,
	}, nil
}

// issuerAccepted сравнивает iss с ожидаемым, допуская вариант
// без схемы https:// (так исторически выдаёт Google).
func (v *IDTokenVerifier) issuerAccepted(issuer string) bool {
	if issuer == v.issuer {
		return true
	}
	return "https://"+issuer == v.issuer || issuer == "https://"+v.issuer
}

// --- ReadinessChecker для JWKS ---

// JWKSReadinessChecker — проверка доступности JWKS endpoint провайдера.
type JWKSReadinessChecker struct {
	jwksURL string
	client  *http.Client
}

// NewJWKSReadinessChecker создаёт checker доступности JWKS.
func NewJWKSReadinessChecker(jwksURL string, timeout time.Duration) *JWKSReadinessChecker {
	return &JWKSReadinessChecker{
		jwksURL: jwksURL,
		client:  &http.Client{Timeout: timeout},
	}
}

const statusFail = "fail"

// CheckReady проверяет доступность JWKS endpoint.
func (c *JWKSReadinessChecker) CheckReady() (status, message string) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.jwksURL, http.NoBody)
	if err != nil {
		return statusFail, "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return statusFail, fmt.Sprintf("JWKS недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusFail, fmt.Sprintf("JWKS вернул статус %d", resp.StatusCode)
	}

	// Проверяем, что ответ — валидный JSON с ключами
	var jwksResp struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwksResp); err != nil {
		return "degraded", fmt.Sprintf("JWKS: невалидный JSON: %v", err)
	}

	if len(jwksResp.Keys) == 0 {
		return "degraded", "JWKS: нет ключей"
	}

	return "ok", fmt.Sprintf("JWKS доступен, ключей: %d", len(jwksResp.Keys))
}
