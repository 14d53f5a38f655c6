package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health        *Handler
	Auth          *AuthHandler
	Users         *UserHandler
	Applications  *ApplicationHandler
	Documents     *DocumentHandler
	Loans         *LoanHandler
	Rates         *RateHandler
	Notifications *NotificationHandler
}

// Guards are the middlewares routes are grouped under. Idempotent wraps the
// mutating submission and repayment routes.
type Guards struct {
	Identity   echo.MiddlewareFunc
	Payments   echo.MiddlewareFunc
	Idempotent echo.MiddlewareFunc
}

func Register(e *echo.Echo, h Handlers, g Guards) {
	e.GET("/health", h.Health.Health)

	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	api := e.Group("", g.Identity)

	api.GET("/users/me", h.Users.Me)
	api.GET("/users", h.Users.List)
	api.PATCH("/users/:id", h.Users.Update)

	api.POST("/applications", h.Applications.Submit, g.Idempotent)
	api.GET("/applications", h.Applications.List)
	api.GET("/applications/:id", h.Applications.Get)
	api.PATCH("/applications/:id", h.Applications.Transition)
	api.POST("/applications/:id/review", h.Applications.Review)
	api.POST("/applications/:id/disburse", h.Applications.Disburse)

	api.GET("/documents", h.Documents.List)
	api.POST("/documents", h.Documents.Upload)
	api.PATCH("/documents/:id", h.Documents.Review)
	api.DELETE("/documents/:id", h.Documents.Delete)
	api.GET("/files/:application_id/:name", h.Documents.File)

	api.GET("/loans", h.Loans.List)
	api.GET("/loans/:id", h.Loans.Get)

	api.GET("/interest-rates", h.Rates.List)
	api.POST("/interest-rates", h.Rates.Create)
	api.DELETE("/interest-rates/:id", h.Rates.Delete)

	api.GET("/notifications", h.Notifications.List)

	internal := e.Group("/internal", g.Payments)
	internal.POST("/loans/:id/repayments", h.Loans.RecordRepayment, g.Idempotent)
}
