package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"Lee_Meetup/internal/handler"
	"Lee_Meetup/internal/metrics"
	"Lee_Meetup/internal/middleware"
	"Lee_Meetup/internal/service"
)

type Deps struct {
	Auth              *service.AuthService
	Communities       *service.CommunityService
	Events            *service.EventService
	Logger            zerolog.Logger
	AuthRatePerMinute int
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics(), middleware.RequestLogger(d.Logger))

	user := handler.NewUserHandler(d.Auth)
	community := handler.NewCommunityHandler(d.Communities)
	event := handler.NewEventHandler(d.Events)
	requireAuth := middleware.AuthMiddleware(d.Auth)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	// 用户相关接口
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(d.AuthRatePerMinute))
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", user.Login)
		authGroup.GET("/me", requireAuth, user.Me)
	}

	// 社区相关接口
	communityGroup := api.Group("/communities")
	{
		communityGroup.GET("", community.List)
		communityGroup.GET("/:id", community.Get)
		communityGroup.POST("", requireAuth, community.Create)
		communityGroup.POST("/:id/join", requireAuth, community.Join)
		communityGroup.POST("/:id/leave", requireAuth, community.Leave)
	}

	// 活动相关接口
	eventGroup := api.Group("/events")
	{
		eventGroup.GET("", event.List)
		eventGroup.GET("/:id", event.Get)
		eventGroup.POST("", requireAuth, event.Create)
		eventGroup.POST("/:id/rsvp", requireAuth, event.RSVP)
		eventGroup.DELETE("/:id/rsvp", requireAuth, event.CancelRSVP)
	}

	return r
}
