package api

import (
	"net/url"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/eralp/turbonote/internal/apperr"
	"github.com/eralp/turbonote/internal/query"
)

// listParams are the parsed query parameters of a list request.
type listParams struct {
	Search   string
	Pinned   *bool
	Page     int
	PageSize int
	Sort     string
}

// Validate rejects out-of-domain values before they reach the query
// engine.
func (p listParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Min(1)),
		validation.Field(&p.PageSize, validation.Min(1), validation.Max(query.MaxPageSize)),
		validation.Field(&p.Sort, validation.Required,
			validation.In(query.SortUpdatedAtDesc, query.SortUpdatedAtAsc, query.SortPinnedDesc)),
	)
}

// parseListParams reads and validates list parameters, applying the
// documented defaults for absent ones.
func parseListParams(values url.Values) (listParams, error) {
	p := listParams{
		Search:   values.Get("search"),
		Page:     query.DefaultPage,
		PageSize: query.DefaultPageSize,
		Sort:     query.SortUpdatedAtDesc,
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperr.Validation("page must be an integer")
		}
		p.Page = n
	}
	if raw := values.Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperr.Validation("page_size must be an integer")
		}
		p.PageSize = n
	}
	if raw := values.Get("sort"); raw != "" {
		p.Sort = raw
	}
	if raw := values.Get("pinned"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return p, apperr.Validation("pinned must be a boolean")
		}
		p.Pinned = &b
	}

	if err := p.Validate(); err != nil {
		return p, apperr.Validation(err.Error())
	}
	return p, nil
}

func (p listParams) engineParams() query.Params {
	return query.Params{
		Search:   p.Search,
		Pinned:   p.Pinned,
		Page:     p.Page,
		PageSize: p.PageSize,
		Sort:     p.Sort,
	}
}
