package server

import (
	"context"
	"log"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"ragchat-client/internal/bootstrap"
	"ragchat-client/internal/config"
	"ragchat-client/internal/constant"
	"ragchat-client/internal/controller"
	"ragchat-client/internal/pkg/serverutils"
)

// Server is the development backend the chat client can point at.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.StubContainer
}

func New(cfg *config.Config, container *bootstrap.StubContainer) *Server {
	return &Server{
		app:       NewApp(cfg.Stub, container.ConversationController),
		cfg:       cfg,
		container: container,
	}
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(cfg config.StubConfig, conversations controller.IConversationController) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024, // 10MB
		ErrorHandler:          serverutils.ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	app.Use(otelfiber.Middleware())

	auth := serverutils.NewJwtMiddleware(cfg.JWTSecret, constant.DefaultUser)
	conversations.RegisterRoutes(app, auth)

	return app
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Stub backend is running on http://localhost:%s", s.cfg.Stub.Port)
	return s.app.Listen(":" + s.cfg.Stub.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
