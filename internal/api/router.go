package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"factory-floor-backend/config"
	"factory-floor-backend/internal/model"
	"factory-floor-backend/internal/mw"
	"factory-floor-backend/internal/status"
	"factory-floor-backend/internal/store"
	"factory-floor-backend/internal/ws"
)

// Gateways bundles the realtime gateways served next to the REST routes.
type Gateways struct {
	Hub         *ws.Hub
	Machines    *ws.MachineGateway
	Annotations *ws.AnnotationGateway
	Chat        *ws.ChatGateway
}

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, statusSvc *status.Service, gw Gateways, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, statusSvc, gw.Annotations, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 10*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	manageOnly := mw.RequireRole(s, model.RoleAdmin, model.RoleEngineer)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", handler.Login)

		api.GET("/machines", caching, handler.GetMachines)
		api.GET("/machines/:id", handler.GetMachine)
		api.POST("/machines", manageOnly, handler.CreateMachine)
		api.PATCH("/machines/:id/status", handler.UpdateMachineStatus)

		api.GET("/production-lines", caching, handler.GetProductionLines)
		api.GET("/production-lines/:id", handler.GetProductionLine)

		api.GET("/annotations/machine/:machineId", handler.GetAnnotationsByMachine)
		api.POST("/annotations", handler.CreateAnnotation)
		api.PUT("/annotations/:id", handler.UpdateAnnotation)
		api.DELETE("/annotations/:id", handler.DeleteAnnotation)

		// Chat creation is WebSocket-only; REST exposes history reads.
		api.GET("/chat/machine/:machineId", handler.GetChatByMachine)

		api.GET("/downtimes", handler.GetDowntimes)
		api.POST("/downtimes", handler.CreateDowntime)
		api.GET("/downtimes/machine/:machineId", handler.GetDowntimesByMachine)
		api.PATCH("/downtimes/:id/close", handler.CloseDowntime)

		users := api.Group("/users")
		users.Use(manageOnly)
		{
			users.GET("", handler.GetUsers)
			users.GET("/:id", handler.GetUser)
			users.POST("", handler.CreateUser)
			users.PATCH("/:id", handler.UpdateUser)
			users.DELETE("/:id", handler.DeleteUser)
		}

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	r.GET("/ws/machines", ws.Serve(gw.Hub, gw.Machines))
	r.GET("/ws/annotations", ws.Serve(gw.Hub, gw.Annotations))
	r.GET("/ws/chat", ws.Serve(gw.Hub, gw.Chat))

	return r
}
