// Package http exposes the analysis engine over HTTP.
package http

import (
	"strconv"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"trade-analytics/internal/observability"
)

// Router wires the analysis endpoints onto a fiber application.
type Router struct {
	app *fiber.App
	log zerolog.Logger
}

// New builds the application router.
func New(log zerolog.Logger) *Router {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	r := &Router{app: app, log: log}

	api := app.Group("/api")
	v1 := api.Group("/v1")
	analyze := v1.Group("/analyze")

	analyze.Post("/patterns", r.instrument("patterns", r.analyzePatterns))
	analyze.Post("/behavior", r.instrument("behavior", r.analyzeBehavior))
	analyze.Post("/combined-analysis", r.instrument("combined", r.combinedAnalysis))

	app.Get("/metrics", adaptor.HTTPHandler(observability.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	return r
}

// App returns the underlying fiber application.
func (r *Router) App() *fiber.App {
	return r.app
}

// instrument records request count, status and duration per endpoint.
func (r *Router) instrument(endpoint string, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := h(c)

		status := c.Response().StatusCode()
		if ferr, ok := err.(*fiber.Error); ok {
			status = ferr.Code
		}
		observability.RecordAnalysis(endpoint, strconv.Itoa(status), time.Since(start).Seconds())

		r.log.Info().
			Str("endpoint", endpoint).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("analysis request")
		return err
	}
}
