package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kube-rca/reactions/internal/config"
	"github.com/kube-rca/reactions/internal/handler"
	"github.com/kube-rca/reactions/internal/model"
)

type tokenParser interface {
	ParseAccessToken(tokenStr string) (*model.AuthUser, error)
}

// New builds the HTTP router.
//
// Routes:
//   - GET  /ping, GET /, GET /openapi.json
//   - GET  /api/v1/reactions/summary, /rating (anonymous or authenticated)
//   - GET  /api/v1/reactions/mine, POST /toggle, POST /rate (bearer token required)
//   - GET  /api/v1/widgets/:type/:id (public widget view)
func New(cfg config.ServerConfig, auth tokenParser, reactions *handler.ReactionHandler, widgets *handler.WidgetHandler) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	r.GET("/ping", handler.Ping)
	r.GET("/", handler.Root)
	r.GET("/openapi.json", handler.OpenAPIDoc)

	v1 := r.Group("/api/v1")

	api := v1.Group("/reactions", handler.OptionalAuth(auth))
	api.GET("/summary", reactions.GetSummary)
	api.GET("/rating", reactions.GetRating)

	authed := api.Group("", handler.RequireAuth())
	authed.GET("/mine", reactions.GetMine)
	authed.POST("/toggle", reactions.Toggle)
	authed.POST("/rate", reactions.Rate)

	v1.GET("/widgets/:type/:id", widgets.GetWidget)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Reaction-Partial"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		// widgets are embedded on arbitrary pages; without a list, allow any origin but no credentials
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
