// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"cravlr/internal/delivery/http/middleware"
	"cravlr/internal/delivery/http/router/handler"
	"cravlr/internal/delivery/stream"
	"cravlr/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler           *handler.AuthHandler
	ProfileHandler        *handler.ProfileHandler
	DeviceHandler         *handler.DeviceHandler
	RequestHandler        *handler.RequestHandler
	RecommendationHandler *handler.RecommendationHandler
	InboxHandler          *handler.InboxHandler
	ReferralHandler       *handler.ReferralHandler
	BusinessHandler       *handler.BusinessHandler
	Hub                   *stream.Hub
	AuthMiddleware        *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	params RouterParams
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{params: params}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	p := r.params
	authenticate := p.AuthMiddleware.Authenticate

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public referral redirect; shared links land here from anywhere.
	e.GET("/r/:code", p.ReferralHandler.TrackClick)

	// Auth routes
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", p.AuthHandler.Register)
		authGroup.POST("/login", p.AuthHandler.Login)
		authGroup.POST("/google", p.AuthHandler.GoogleSignIn)
		authGroup.POST("/refresh", p.AuthHandler.RefreshToken)
		authGroup.POST("/logout", p.AuthHandler.Logout)
		authGroup.POST("/logout-all", p.AuthHandler.LogoutAllDevices, authenticate)
	}

	// Profile and device routes
	meGroup := e.Group("/me", authenticate)
	{
		meGroup.GET("/profile", p.ProfileHandler.GetProfile)
		meGroup.PATCH("/profile", p.ProfileHandler.UpdateProfile)
		meGroup.POST("/devices", p.DeviceHandler.RegisterDevice)
		meGroup.GET("/devices", p.DeviceHandler.ListDevices)
		meGroup.DELETE("/devices/:id", p.DeviceHandler.DeactivateDevice)
	}

	// Food request routes
	requestGroup := e.Group("/requests", authenticate)
	{
		requestGroup.POST("", p.RequestHandler.CreateRequest)
		requestGroup.GET("", p.RequestHandler.ListActiveRequests)
		requestGroup.GET("/mine", p.RequestHandler.ListMyRequests)
		requestGroup.GET("/:id", p.RequestHandler.GetRequest)
		requestGroup.POST("/:id/close", p.RequestHandler.CloseRequest)
		requestGroup.GET("/:id/results", p.RequestHandler.GetRequestResults)
		requestGroup.GET("/:id/recommendations", p.RecommendationHandler.ListByRequest)
		requestGroup.POST("/:id/decline", p.RecommendationHandler.DeclineRequest)
	}

	// Recommendation routes
	recommendationGroup := e.Group("/recommendations", authenticate)
	{
		recommendationGroup.POST("", p.RecommendationHandler.SubmitRecommendation)
		recommendationGroup.POST("/:id/save", p.RecommendationHandler.SaveRecommendation)
		recommendationGroup.POST("/:id/referral-link", p.ReferralHandler.CreateReferralLink)
		recommendationGroup.GET("/:id/referral-qr", p.ReferralHandler.GetReferralQR)
	}

	// Notification inbox routes
	inboxGroup := e.Group("/inbox", authenticate)
	{
		inboxGroup.GET("", p.InboxHandler.GetInbox)
		inboxGroup.GET("/unread", p.InboxHandler.CountUnread)
		inboxGroup.POST("/:id/read", p.InboxHandler.MarkRead)
		inboxGroup.POST("/reminders/process", p.InboxHandler.ProcessMyReminders)
		inboxGroup.GET("/recommender", p.InboxHandler.GetRecommenderInbox)
		inboxGroup.POST("/recommender/:id/read", p.InboxHandler.MarkRecommenderRead)
	}

	// Realtime ping stream
	e.GET("/stream", p.Hub.HandleStream, authenticate)

	// Business portal routes
	businessGroup := e.Group("/business", authenticate)
	{
		businessGroup.POST("/claims", p.BusinessHandler.SubmitClaim)

		ownerGroup := businessGroup.Group("", p.AuthMiddleware.RequireRole(string(entity.RoleBusiness)))
		{
			ownerGroup.GET("/me", p.BusinessHandler.GetMyBusiness)
			ownerGroup.POST("/conversions", p.ReferralHandler.MarkConversion)
			ownerGroup.GET("/conversions", p.ReferralHandler.ListConversions)
			ownerGroup.GET("/commission", p.ReferralHandler.GetCommissionSummary)
		}
	}

	// Admin routes for claim review
	adminGroup := e.Group("/admin", authenticate, p.AuthMiddleware.RequireRole(string(entity.RoleAdmin)))
	{
		adminGroup.GET("/claims", p.BusinessHandler.ListClaims)
		adminGroup.POST("/claims/:id/review", p.BusinessHandler.ReviewClaim)
	}
}
