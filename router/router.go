package router

import (
	"context"
	"net/http"
	"time"

	"calorie-tracker/auth"
	"calorie-tracker/config"
	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/metrics"
	"calorie-tracker/services"
	"calorie-tracker/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Probe reports whether a backing store is reachable.
type Probe func(ctx context.Context) error

type Dependencies struct {
	Config   *config.Config
	Log      *logrus.Logger
	Users    dal.UserDAO
	Profiles dal.ProfileDAO
	Food     dal.FoodDAO
	Probes   map[string]Probe
}

func Router(deps Dependencies) *gin.Engine {
	route := gin.New()
	route.Use(gin.Recovery())
	route.Use(logger.Middleware(deps.Log))
	route.Use(metrics.Middleware())
	route.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	route.POST("/register", auth.Register(deps.Users))
	route.POST("/login", auth.Login(deps.Users))
	if auth.GoogleOauthConfig != nil {
		route.GET("/auth/google/login", auth.GoogleLogin)
		route.GET("/auth/google/callback", auth.GoogleCallback(deps.Users))
	}

	api := route.Group("/api", auth.AuthMiddleware())
	services.NewTrackingController(deps.Users, deps.Profiles, deps.Food).Register(api)
	api.GET("/profile", services.GetProfile(deps.Profiles))
	api.PUT("/profile", services.SaveProfile(deps.Profiles))

	route.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	route.GET("/read-probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	route.GET("/check-live", checkLive(deps.Probes))
	route.GET("/metrics", gin.WrapH(metrics.Handler()))

	route.NoRoute(web.Handler())
	return route
}

type liveResponse struct {
	Success bool              `json:"success"`
	Checks  map[string]string `json:"checks"`
}

// checkLive pings every backing store and reports 503 if any is down.
func checkLive(probes map[string]Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp := liveResponse{Success: true, Checks: map[string]string{}}
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				logger.For(c).WithError(err).WithField("probe", name).Error("liveness check failed")
				resp.Success = false
				resp.Checks[name] = err.Error()
				continue
			}
			resp.Checks[name] = "ok"
		}

		status := http.StatusOK
		if !resp.Success {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}
