package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"media-store/internal/config"
	"media-store/internal/utils/platformerrors"
)

// APIKeyHeader carries the shared service key.
const APIKeyHeader = "X-Api-Key"

// Validator authenticates callers by shared API key, JWT, or both.
type Validator struct {
	cfg  *config.Config
	log  zerolog.Logger
	jwks *keyfunc.JWKS
}

// NewValidator initializes JWKS fetching when JWT auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	logger := log.With().Str("component", "auth").Logger()
	if !cfg.AuthEnabled {
		return &Validator{cfg: cfg, log: logger}, nil
	}

	options := keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Error().Err(err).Msg("jwks refresh error")
		},
	}

	jwks, err := keyfunc.Get(cfg.AuthJWKSURL, options)
	if err != nil {
		return nil, err
	}

	return &Validator{
		cfg:  cfg,
		log:  logger,
		jwks: jwks,
	}, nil
}

// Middleware accepts a request carrying the configured API key. Otherwise, when JWT
// auth is enabled, a valid bearer token is required. With neither configured every
// request passes.
func (v *Validator) Middleware() gin.HandlerFunc {
	if v == nil || (v.cfg.APIKey == "" && !v.cfg.AuthEnabled) {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if v.cfg.APIKey != "" {
			provided := strings.TrimSpace(c.GetHeader(APIKeyHeader))
			if provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(v.cfg.APIKey)) == 1 {
				c.Set("auth_method", "api_key")
				c.Next()
				return
			}
			if !v.cfg.AuthEnabled {
				abortUnauthorized(c, "missing or invalid api key")
				return
			}
		}

		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		options := []jwt.ParserOption{
			jwt.WithIssuer(v.cfg.AuthIssuer),
			jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}),
		}
		if v.cfg.AuthAudience != "" {
			options = append(options, jwt.WithAudience(v.cfg.AuthAudience))
		}

		token, err := jwt.Parse(tokenString, v.jwks.Keyfunc, options...)
		if err != nil || !token.Valid {
			v.log.Debug().Err(err).Msg("rejected bearer token")
			abortUnauthorized(c, "invalid token")
			return
		}

		if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
			c.Set("auth_subject", subject)
		}
		c.Set("auth_method", "jwt")
		c.Set("auth_token", token)
		c.Next()
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":       "b9352619-bd65-4cf8-ba7c-b8037acbbbcf",
		"error":      string(platformerrors.ErrorTypeUnauthorized),
		"message":    message,
		"request_id": platformerrors.RequestIDFromContext(c.Request.Context()),
	})
}
