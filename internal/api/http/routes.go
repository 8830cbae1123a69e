package httpapi

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/atmosphere/internal/journal"
	"github.com/i474232898/atmosphere/internal/store"
	"github.com/i474232898/atmosphere/internal/weather"
)

var validate = validator.New()

type handlers struct {
	service *weather.Service
	journal journal.Store
	logger  *slog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, journalStore journal.Store, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{service: service, journal: journalStore, logger: logger}

	v1 := app.Group("/api/v1", deviceMiddleware)

	v1.Post("/weather", h.getDashboard)
	v1.Get("/weather/history", h.getHistory)

	v1.Get("/mood", h.getMood)
	v1.Get("/mood/tags", func(c *fiber.Ctx) error {
		return c.JSON(weather.MoodTags())
	})

	v1.Get("/device", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"deviceId": deviceID(c)})
	})

	v1.Get("/journal", h.listJournal)
	v1.Post("/journal", h.createJournal)
	v1.Delete("/journal/:id", h.deleteJournal)
}

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// weatherRequest is the body of POST /weather: either coordinates or a city.
type weatherRequest struct {
	Lat     *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon     *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	City    string   `json:"city" validate:"max=200"`
	Country string   `json:"country" validate:"max=100"`
}

func (r weatherRequest) toLocation() weather.Location {
	return weather.Location{
		City:    strings.TrimSpace(r.City),
		Country: strings.TrimSpace(r.Country),
		Lat:     r.Lat,
		Lon:     r.Lon,
	}
}

func (h *handlers) getDashboard(c *fiber.Ctx) error {
	var req weatherRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	dashboard, err := h.service.GetDashboard(c.UserContext(), req.toLocation())
	if err != nil {
		return weatherError(err)
	}

	return c.JSON(dashboard)
}

// weatherError maps service errors onto HTTP statuses. Provider rejections
// keep the provider's own status code and message.
func weatherError(err error) error {
	var upstream *weather.UpstreamError
	switch {
	case errors.Is(err, weather.ErrMissingLocation):
		return fiber.NewError(fiber.StatusBadRequest, "Provide lat/lon or city")
	case errors.Is(err, weather.ErrProviderNotConfigured):
		return fiber.NewError(fiber.StatusInternalServerError, "API key not configured")
	case errors.As(err, &upstream):
		return fiber.NewError(upstream.StatusCode, upstream.Message)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

func (h *handlers) getHistory(c *fiber.Ctx) error {
	var req historyQuery
	if err := req.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc := req.Location.toLocation()
	snapshots, err := h.service.GetRange(loc, req.From, req.To)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
	}

	return c.JSON(fiber.Map{
		"location":  loc,
		"from":      req.From,
		"to":        req.To,
		"snapshots": snapshots,
	})
}

func (h *handlers) getMood(c *fiber.Ctx) error {
	raw := c.Query("temperature")
	if raw == "" {
		return fiber.NewError(fiber.StatusBadRequest, "temperature query parameter is required")
	}
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "temperature must be a number")
	}

	return c.JSON(weather.Classify(temp, c.Query("condition")))
}

func (h *handlers) listJournal(c *fiber.Ctx) error {
	entries, err := h.journal.ListByDevice(c.UserContext(), deviceID(c), journal.ListLimit)
	if err != nil {
		h.logger.Error("list journal entries", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load journal entries")
	}
	return c.JSON(entries)
}

func (h *handlers) createJournal(c *fiber.Ctx) error {
	var in journal.Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	entry, err := h.journal.Create(c.UserContext(), deviceID(c), in)
	if err != nil {
		if errors.Is(err, journal.ErrInvalidEntry) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("save journal entry", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save journal entry")
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handlers) deleteJournal(c *fiber.Ctx) error {
	err := h.journal.Delete(c.UserContext(), deviceID(c), c.Params("id"))
	if err != nil {
		if errors.Is(err, journal.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "journal entry not found")
		}
		h.logger.Error("delete journal entry", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to delete journal entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Location = locationQuery{
		City:    c.Query("city"),
		Country: c.Query("country"),
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
