package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/istudy/dashboard/core"
	"github.com/istudy/dashboard/core/dates"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

func bindOrdering(ctx echo.Context) []core.DBOrdering {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	return ordering.Orderings
}

// queryStrings collects a repeatable query param; comma separated values are split too.
func queryStrings(ctx echo.Context, name string) []string {
	var out []string
	for _, raw := range ctx.QueryParams()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = core.CleanString(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func queryString(ctx echo.Context, name string) string {
	return core.CleanString(ctx.QueryParam(name))
}

// queryBool returns nil when the param is absent.
func queryBool(ctx echo.Context, name string) (*bool, error) {
	raw := queryString(ctx, name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, invalidParam(name, "must be true or false")
	}
	return &b, nil
}

// queryTime accepts RFC 3339 timestamps and YYYY-MM-DD days in the program time zone.
func queryTime(ctx echo.Context, name string) (time.Time, error) {
	raw := queryString(ctx, name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := dates.ParseDay(raw)
	if err != nil {
		return time.Time{}, invalidParam(name, "must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	return t, nil
}

func invalidParam(name, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: name, Error: msg})
}
