package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nekidaem/blogfeed/internal/apperr"
	"github.com/nekidaem/blogfeed/internal/repositories"
	"github.com/rs/zerolog/log"
)

// httpError maps precondition failures to their HTTP status. Anything else is
// an unexpected server-side failure and is logged.
func httpError(err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindNotFound:
			return echo.NewHTTPError(http.StatusNotFound, appErr.Message)
		case apperr.KindConflict:
			return echo.NewHTTPError(http.StatusBadRequest, appErr.Message)
		case apperr.KindForbidden:
			return echo.NewHTTPError(http.StatusForbidden, appErr.Message)
		}
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	}
	log.Error().Err(err).Msg("Unhandled error")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// bindAndValidate decodes the JSON body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

func parseBoolQuery(c echo.Context, name string, defaultValue bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" flag")
	}
	return v, nil
}

// parseWindow reads optional skip/limit query values for plain list endpoints.
func parseWindow(c echo.Context, maxLimit int) (skip, limit int, err error) {
	skip, limit = 0, maxLimit
	if raw := c.QueryParam("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid skip")
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid limit")
		}
	}
	return skip, limit, nil
}
