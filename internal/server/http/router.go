// Package http exposes the assessment service over HTTP.
package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"yoxo/internal/assessment"
	"yoxo/internal/intake"
	"yoxo/internal/logging"
)

// RouterConfig carries the dependencies of the HTTP surface.
type RouterConfig struct {
	Service  *assessment.Service
	Sessions *intake.Store
	// Production tightens gin mode and CORS.
	Production bool
	// AllowedOrigins lists the CORS origins accepted in production. Ignored
	// in development, where every origin is allowed.
	AllowedOrigins []string
}

// NewRouter builds the gin engine with all endpoints and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(logging.NewComponentLogger("HTTP")))
	engine.Use(cors.New(corsConfig(cfg)))

	surveyHandler := NewSurveyHandler(cfg.Service)
	intakeHandler := NewIntakeHandler(cfg.Sessions, cfg.Service)

	api := engine.Group("/api")
	{
		api.POST("/submit-survey", surveyHandler.SubmitSurvey)
		api.GET("/results/:publicId", surveyHandler.GetResults)
		api.GET("/dashboard", surveyHandler.GetDashboard)

		sessions := api.Group("/intake/sessions")
		{
			sessions.POST("", intakeHandler.StartSession)
			sessions.GET("/:token", intakeHandler.GetSession)
			sessions.POST("/:token/answers", intakeHandler.SubmitAnswer)
			sessions.POST("/:token/sections", intakeHandler.CommitSection)
		}
	}

	engine.GET("/health", handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}

func corsConfig(cfg RouterConfig) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsCfg.MaxAge = 12 * time.Hour

	if cfg.Production && len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
