package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/healthsync/internal/handler"
	"github.com/iliyamo/healthsync/internal/middleware"
)

// Handlers groups the authenticated API handlers.
type Handlers struct {
	Auth        *handler.AuthHandler
	Habits      *handler.HabitHandler
	Records     *handler.RecordHandler
	Tokens      *handler.TokenHandler
	Paperwork   *handler.PaperworkHandler
	Predictions *handler.PredictionHandler
	Care        *handler.CareHandler
	Assistant   *handler.AssistantHandler
	Dashboard   *handler.DashboardHandler
}

// Guards are the middlewares placed in front of groups of routes.  A nil
// guard is skipped.
type Guards struct {
	JWTSecret string
	AILimit   echo.MiddlewareFunc // token bucket for LLM-backed POSTs
	Cache     echo.MiddlewareFunc // response cache for the dashboard
}

func optional(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}

// RegisterAPI registers every authenticated endpoint under /v1.  Routes
// with a :user segment only serve the token's own user; routes taking the
// user in the body check it in the handler.
func RegisterAPI(e *echo.Echo, h Handlers, g Guards) {
	api := e.Group("/v1", middleware.JWTAuth(g.JWTSecret))
	self := middleware.RequireSelf("user")
	ai := optional(g.AILimit)

	api.GET("/me", h.Auth.Me)
	api.GET("/users/:user", h.Auth.Profile, self)

	// ---- Habits ----
	api.POST("/habits", h.Habits.Log)
	api.GET("/habits/:user", h.Habits.List, self)
	api.GET("/habits/:user/analytics", h.Habits.Analytics, self)
	api.GET("/habits/:user/export", h.Habits.Export, self)

	// ---- Medical records ----
	api.POST("/medical-records", h.Records.Create, ai...)
	api.POST("/medical-records/upload", h.Records.Upload, ai...)
	api.GET("/medical-records/:user", h.Records.List, self)

	// ---- Tokens ----
	api.GET("/tokens/:user", h.Tokens.Summary, self)
	api.POST("/tokens/:user/redeem", h.Tokens.Redeem, self)

	// ---- Paperwork and predictions ----
	api.POST("/paperwork", h.Paperwork.Generate, ai...)
	api.GET("/paperwork/:user", h.Paperwork.List, self)
	api.POST("/predictions", h.Predictions.Analyze, ai...)
	api.GET("/predictions/:user", h.Predictions.List, self)

	// ---- Care ----
	api.POST("/medications", h.Care.AddMedication)
	api.POST("/medications/check", h.Care.CheckInteractions, ai...)
	api.GET("/medications/:user", h.Care.ListMedications, self)
	api.POST("/emergency-contacts", h.Care.AddContact)
	api.GET("/emergency-contacts/:user", h.Care.ListContacts, self)
	api.POST("/emergency/check", h.Care.CheckEmergency, ai...)
	api.GET("/alerts/:user", h.Care.ListAlerts, self)

	// ---- Assistant ----
	api.POST("/assistant/chat", h.Assistant.Chat, ai...)

	// The cache runs after RequireSelf so a forbidden request never reads
	// another user's entry.
	api.GET("/dashboard/:user", h.Dashboard.Get, append([]echo.MiddlewareFunc{self}, optional(g.Cache)...)...)
}
