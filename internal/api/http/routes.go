package httpapi

import (
	"bytes"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/temperature-chart/internal/weather"
)

var validate = validator.New()

// ErrorHandler is the centralized error response for the preview server.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/chart", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if _, err := service.Render(c.UserContext(), &buf); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/series", func(c *fiber.Ctx) error {
		var req rangeQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, err := service.Load(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if req.set {
			series = series.Between(req.From, req.To)
		}

		return c.JSON(fiber.Map{
			"dateColumn":  series.DateColumn,
			"valueColumn": series.ValueColumn,
			"readings":    series.Readings,
			"summary":     series.Summarize(),
		})
	})

	v1.Get("/summary", func(c *fiber.Ctx) error {
		series, err := service.Load(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(series.Summarize())
	})
}

// rangeQuery holds the optional date range of the series endpoint.
type rangeQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`

	set bool
}

func (q *rangeQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		return nil
	}
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters must be given together")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	q.From, q.To, q.set = from, to, true
	return validate.Struct(q)
}

// parseTime accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.ParseInLocation(weather.DateFormat, s, time.UTC); err == nil {
		return ts, nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or YYYY-MM-DD")
}
