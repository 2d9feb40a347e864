package httpapi

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/no2-dashboard/internal/dashboard"
	"github.com/i474232898/no2-dashboard/internal/imagery"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *dashboard.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/window", func(c *fiber.Ctx) error {
		return c.JSON(service.Window())
	})

	v1.Get("/map", func(c *fiber.Ctx) error {
		q := mapQuery{Date: c.Query("date")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := service.MapView(c.UserContext(), q.Date)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(view)
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		loc, err := resolvePoint(c, service, true)
		if err != nil {
			return err
		}

		result, err := service.NO2Series(c.UserContext(), loc)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(result)
	})

	v1.Get("/series/meteorology", func(c *fiber.Ctx) error {
		loc, err := resolvePoint(c, service, false)
		if err != nil {
			return err
		}

		result, err := service.MeteorologySeries(c.UserContext(), loc)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(result)
	})
}

// mapQuery holds query parameters for the map endpoint.
type mapQuery struct {
	Date string `validate:"omitempty,datetime=2006-01-02"`
}

// pointQuery identifies a location either by coordinates or by place name.
type pointQuery struct {
	Lat     *float64 `validate:"required_with=Lon"`
	Lon     *float64 `validate:"required_with=Lat"`
	City    string   `validate:"required_with=Country,excluded_with=Lat"`
	Country string   `validate:"required_with=City"`
}

func (p *pointQuery) bind(c *fiber.Ctx) error {
	for _, f := range []struct {
		name string
		dst  **float64
	}{{"lat", &p.Lat}, {"lon", &p.Lon}} {
		raw := c.Query(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = &v
	}
	p.City = c.Query("city")
	p.Country = c.Query("country")
	return validate.Struct(p)
}

// resolvePoint reads the requested location, falling back to the default one
// when nothing was given.
func resolvePoint(c *fiber.Ctx, service *dashboard.Service, allowPlace bool) (dashboard.Location, error) {
	var q pointQuery
	if err := q.bind(c); err != nil {
		return dashboard.Location{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	switch {
	case q.Lat != nil:
		return dashboard.Location{Lat: *q.Lat, Lon: *q.Lon}, nil
	case q.City != "":
		if !allowPlace {
			return dashboard.Location{}, fiber.NewError(fiber.StatusBadRequest, "place lookup is not supported on this endpoint")
		}
		loc, err := service.ResolveLocation(c.UserContext(), q.City, q.Country)
		if err != nil {
			if errors.Is(err, dashboard.ErrGeocodingDisabled) {
				return dashboard.Location{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			log.Printf("ERROR: geocoding %s, %s failed: %v", q.City, q.Country, err)
			return dashboard.Location{}, fiber.NewError(fiber.StatusNotFound, "location could not be resolved")
		}
		return loc, nil
	default:
		return service.DefaultLocation(), nil
	}
}

// toHTTPError maps dashboard and imagery errors onto status codes.
func toHTTPError(err error) error {
	var (
		alignErr    *imagery.AlignmentError
		schemaErr   *imagery.SchemaError
		notFound    *imagery.BandNotFoundError
		unknownBand *imagery.UnknownBandError
		unavailable *imagery.BackendUnavailableError
	)

	switch {
	case errors.Is(err, dashboard.ErrInvalidDate), errors.Is(err, dashboard.ErrDateOutOfRange):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.As(err, &alignErr):
		return fiber.NewError(fiber.StatusNotFound, "no overlapping observations for requested location")
	case errors.As(err, &unavailable):
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "imagery backend unavailable")
	case errors.As(err, &schemaErr), errors.As(err, &notFound), errors.As(err, &unknownBand):
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		log.Printf("ERROR: %v", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build series")
	}
}
