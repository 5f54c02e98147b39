package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aquaflow/servicecrm/internal/api/middleware"
	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
)

// searchParam carries the free-text search. Every other query parameter is
// offered to the list's filter spec, which ignores names it does not know.
const searchParam = "q"

// principal returns the authenticated caller. Its absence means the route
// was registered outside the Auth middleware.
func principal(c echo.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}

func listQuery(c echo.Context) filter.Query {
	q := filter.Query{Filters: make(map[string]string)}
	for name, values := range c.QueryParams() {
		if len(values) == 0 {
			continue
		}
		if name == searchParam {
			q.Search = values[0]
			continue
		}
		q.Filters[name] = values[0]
	}
	return q
}

// intParam reads a non-negative integer query parameter. A missing value
// yields def.
func intParam(c echo.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		ve := domain.NewValidationError()
		ve.Add(name, "must be a non-negative integer")
		return 0, ve
	}
	return n, nil
}

// bindAndValidate decodes the request body into req and runs the struct
// validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
