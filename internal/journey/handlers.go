package journey

import (
	"errors"
	"time"

	"github.com/mooncitizen/beatphobia-sub001/internal/analysis"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req Journey
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.UserID == "" || req.StartedAt.IsZero() {
			return fiber.NewError(fiber.StatusBadRequest, "user_id and started_at required")
		}
		j, err := svc.SaveJourney(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(j)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		summaries, err := svc.ListJourneys(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(summaries)
	})

	// registered before /:id so the literal segment wins
	r.Get("/rollup", func(c *fiber.Ctx) error {
		userID := c.Query("user_id")
		if userID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "user_id required")
		}
		window := analysis.WindowAllTime
		if c.Query("window") == string(analysis.WindowLast7Days) {
			window = analysis.WindowLast7Days
		}

		summaries, err := svc.ListJourneys(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		inputs := make([]analysis.RollupInput, 0, len(summaries))
		for _, sm := range summaries {
			inputs = append(inputs, analysis.RollupInput{
				StartedAt:   sm.StartedAt,
				DistanceM:   sm.DistanceM,
				DurationSec: sm.DurationSec,
				Checkpoints: sm.CheckpointCount,
			})
		}
		return c.JSON(analysis.Rollup(inputs, window, time.Now()))
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		j, err := svc.GetJourney(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "journey not found")
		}
		return c.JSON(j)
	})

	r.Get("/:id/metrics", func(c *fiber.Ctx) error {
		j, err := svc.GetJourney(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "journey not found")
		}
		imperial := c.Query("unit") == "imperial"
		return c.JSON(analysis.JourneyMetrics(j.DistanceM, j.DurationSec, imperial))
	})

	r.Get("/:id/path/smoothed", func(c *fiber.Ctx) error {
		j, err := svc.GetJourney(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "journey not found")
		}
		return c.JSON(fiber.Map{
			"journey_id": j.ID,
			"path":       analysis.SmoothPath(j.Path),
		})
	})

	r.Get("/:id/completions", func(c *fiber.Ctx) error {
		completions, err := svc.Completions(c.Context(), c.Params("id"))
		if err != nil {
			if errors.Is(err, ErrNoLinkedPlan) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(completions)
	})

	r.Post("/:id/live", func(c *fiber.Ctx) error {
		var req LivePoint
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.JourneyID = c.Params("id")
		svc.BroadcastLive(req)
		return c.SendStatus(fiber.StatusAccepted)
	})
}
