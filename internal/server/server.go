package server

import (
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/config"
	"github.com/mooncitizen/beatphobia-sub001/internal/journey"
	"github.com/mooncitizen/beatphobia-sub001/internal/plan"
	"github.com/mooncitizen/beatphobia-sub001/internal/safearea"
	"github.com/mooncitizen/beatphobia-sub001/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	cacheTTL := time.Duration(s.Cfg.SafeAreaTTLSecs) * time.Second
	areaSvc := safearea.NewService(s.DB, s.Redis, cacheTTL)

	journey.RegisterRoutes(s.App.Group("/journeys"), journey.NewService(s.DB, s.Stream, areaSvc))
	plan.RegisterRoutes(s.App.Group("/plans"), plan.NewService(s.DB))
	safearea.RegisterRoutes(s.App.Group("/safearea"), areaSvc)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
