package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/swim-conditions/internal/conditions"
	"github.com/i474232898/swim-conditions/internal/scoring"
	"github.com/i474232898/swim-conditions/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *conditions.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/conditions", func(c *fiber.Ctx) error {
		snap, err := service.Latest(c.Context())
		if err != nil {
			return mapStoreError(err)
		}
		return c.JSON(snap)
	})

	v1.Get("/conditions/score", func(c *fiber.Ctx) error {
		pref, err := parseScoreQuery(c, service.Preference())
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		score, err := service.Rescore(c.Context(), pref)
		if err != nil {
			return mapStoreError(err)
		}
		return c.JSON(fiber.Map{
			"preference": pref,
			"score":      score,
		})
	})

	v1.Get("/readings", func(c *fiber.Ctx) error {
		snap, err := service.Latest(c.Context())
		if err != nil {
			return mapStoreError(err)
		}
		return c.JSON(fiber.Map{
			"timestamp": snap.Timestamp,
			"readings":  snap.Readings,
			"sources":   snap.Sources,
		})
	})

	v1.Get("/dams", func(c *fiber.Ctx) error {
		snap, err := service.Latest(c.Context())
		if err != nil {
			return mapStoreError(err)
		}
		if snap.Readings.DamReleases == nil {
			return fiber.NewError(fiber.StatusNotFound, "dam release data unavailable in latest snapshot")
		}
		return c.JSON(snap.Readings.DamReleases)
	})
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrNoSnapshot) {
		return fiber.NewError(fiber.StatusNotFound, "no conditions recorded yet")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to load conditions")
}

// parseScoreQuery reads the optional tide preference weights, falling back to
// the given defaults for any weight not supplied.
func parseScoreQuery(c *fiber.Ctx, def scoring.TidePreference) (scoring.TidePreference, error) {
	slack, err := queryInt(c, "slack", def.Slack)
	if err != nil {
		return scoring.TidePreference{}, err
	}
	flood, err := queryInt(c, "flood", def.Flood)
	if err != nil {
		return scoring.TidePreference{}, err
	}
	ebb, err := queryInt(c, "ebb", def.Ebb)
	if err != nil {
		return scoring.TidePreference{}, err
	}

	pref := scoring.TidePreference{Slack: slack, Flood: flood, Ebb: ebb}
	if err := validate.Struct(pref); err != nil {
		return pref, err
	}
	return pref, nil
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return n, nil
}
