package api

import (
	"github.com/shalom-dev/support-agent/internal/api/handlers"
	"github.com/shalom-dev/support-agent/pkg/auth"
	"github.com/shalom-dev/support-agent/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func SetupRouter(
	authHandler *handlers.AuthHandler,
	agentHandler *handlers.AgentHandler,
	faqHandler *handlers.FaqHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	// Auth routes (public)
	authGroup := app.Group("/user/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Support agent
	app.Post("/agent/query", agentHandler.Query)

	// FAQ reads are public
	app.Get("/faq", faqHandler.List)
	app.Get("/faq/:category", faqHandler.ListByCategory)

	// FAQ maintenance requires authentication
	protected := app.Group("/api/v1", middleware.AuthMiddleware(jwtManager, appLogger))
	protected.Post("/faq", faqHandler.Create)
	protected.Put("/faq/:id", faqHandler.Update)
	protected.Delete("/faq/:id", faqHandler.Delete)

	return app
}
