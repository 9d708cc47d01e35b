package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/homewatt/tariffwatch/internal/domain"
	"github.com/homewatt/tariffwatch/internal/engine"
	"github.com/homewatt/tariffwatch/internal/repository"
)

func Register(app *fiber.App, eng *engine.Engine, repos *repository.Repos) {
	app.Get("/settings", func(c *fiber.Ctx) error {
		s, err := repos.LoadSettings()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(s)
	})

	app.Put("/settings", func(c *fiber.Ctx) error {
		var patch domain.SettingsPatch
		if err := c.BodyParser(&patch); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if (patch.DayRate != nil && *patch.DayRate < 0) || (patch.NightRate != nil && *patch.NightRate < 0) {
			return c.Status(400).JSON(fiber.Map{"error": "rates must be non-negative"})
		}
		if err := repos.ApplyPatch(patch); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		eng.Refresh()
		s, err := repos.LoadSettings()
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(s)
	})

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(eng.Status())
	})

	app.Get("/history", func(c *fiber.Ctx) error {
		return c.JSON(eng.History())
	})
}
