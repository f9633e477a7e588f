package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/transport/http/handler"
	"github.com/ErlanBelekov/healthcover-api/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

// Authenticator resolves a bearer token to a user ID.
type Authenticator interface {
	Authenticate(rawToken string) (int64, error)
}

type Handlers struct {
	Auth   *handler.AuthHandler
	Policy *handler.PolicyHandler
	ABHA   *handler.ABHAHandler
}

type RouterConfig struct {
	// RequestTimeout bounds auth and insurance requests and the account
	// lookup on every protected route. The ABHA upstream call is bounded by
	// the client's own timeout instead.
	RequestTimeout time.Duration
}

func NewRouter(logger *slog.Logger, h Handlers, auth Authenticator, users middleware.UserFinder, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Backend is running successfully!")
	})

	timeout := middleware.Timeout(cfg.RequestTimeout)
	authMW := middleware.Auth(auth)
	ensureUser := middleware.EnsureUser(users, logger, cfg.RequestTimeout)

	// Public auth routes
	r.POST("/register", timeout, h.Auth.Register)
	r.POST("/login", timeout, h.Auth.Login)

	// Protected insurance routes
	insurance := r.Group("/insurance", timeout, authMW, ensureUser)
	insurance.POST("", h.Policy.Create)
	insurance.GET("/:userId", h.Policy.ListByUser)

	// Protected ABHA proxy
	r.GET("/abha/:id", authMW, ensureUser, h.ABHA.Get)

	return r
}
