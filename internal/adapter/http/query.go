package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/shelter-data-etl-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

// filterQuery is the validated form of the dashboard filter parameters.
type filterQuery struct {
	Settlement  string   `validate:"max=200"`
	Community   string   `validate:"max=200"`
	Types       []string `validate:"max=50,dive,max=200"`
	MaxCapacity *float64 `validate:"omitempty,gte=0"`
	Accessible  bool
}

// parseFilter reads settlement, community, type (repeatable), max_capacity and
// accessible from the query string.
func (s *Server) parseFilter(values url.Values) (domain.Filter, error) {
	q := filterQuery{
		Settlement: values.Get("settlement"),
		Community:  values.Get("community"),
		Types:      nonEmpty(values["type"]),
	}

	if raw := strings.TrimSpace(values.Get("max_capacity")); raw != "" {
		limit, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("max_capacity: %q is not a number", raw)
		}
		q.MaxCapacity = &limit
	}
	if raw := strings.TrimSpace(values.Get("accessible")); raw != "" {
		accessible, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.Filter{}, fmt.Errorf("accessible: %q is not a boolean", raw)
		}
		q.Accessible = accessible
	}

	if err := s.validate.Struct(q); err != nil {
		return domain.Filter{}, describeValidation(err)
	}

	return domain.Filter{
		Settlement:     q.Settlement,
		Community:      q.Community,
		Types:          q.Types,
		MaxCapacity:    q.MaxCapacity,
		AccessibleOnly: q.Accessible,
	}, nil
}

var queryNames = map[string]string{
	"Settlement":  "settlement",
	"Community":   "community",
	"Types":       "type",
	"MaxCapacity": "max_capacity",
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field, _, _ := strings.Cut(fe.StructField(), "[")
	name := queryNames[field]
	if name == "" {
		name = field
	}
	if fe.Param() != "" {
		return fmt.Errorf("%s: failed %s=%s", name, fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%s: failed %s", name, fe.Tag())
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && v != domain.BlankSentinel {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
