package v1

import (
	"github.com/gin-gonic/gin"

	"media-store/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under /v1 prefix.
func (r *Routes) Register(router gin.IRouter) {
	media := router.Group("/v1/media")
	media.POST("/:namespace", r.handlers.Media.Upload)
	media.GET("/:namespace", r.handlers.Media.List)
	media.GET("/:namespace/:id", r.handlers.Media.Get)
	media.GET("/:namespace/:id/url", r.handlers.Media.GetPresignedURL)
	media.GET("/:namespace/:id/content", r.handlers.Media.Content)
	media.PUT("/:namespace/:id", r.handlers.Media.Update)
	media.DELETE("/:namespace/:id", r.handlers.Media.Disable)
}
