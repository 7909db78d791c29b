package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Pagination bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Error describes an invalid pagination parameter. It surfaces as a 400
// with a human-readable message; no mutation happens before it is raised.
type Error struct {
	Param   string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Page is a validated query plan built from untrusted query parameters.
//
// Sort is deliberately unvalidated here; each resource checks it against
// its own allow-list before querying.
type Page struct {
	Limit   int
	After   *int
	Before  *int
	Sort    string
	Order   string
	Filters map[string]string
}

// OrderBy returns a SQL ordering clause using fallback when no sort was
// requested. Callers must have allow-listed Sort first.
func (p *Page) OrderBy(fallback string) string {
	sort := p.Sort
	if sort == "" {
		sort = fallback
	}
	order := p.Order
	if order == "" {
		order = "desc"
	}
	return sort + " " + order
}

// Offset returns the requested offset, zero when none was given.
func (p *Page) Offset() int {
	if p.After == nil {
		return 0
	}
	return *p.After
}

// Plan validates raw query parameters into a Page.
//
// The limit must parse and fall within [1, MaxLimit]. Non-numeric after and
// before values are dropped silently rather than defaulted. An order other
// than asc or desc fails. Filter values arrive as filter[field]=value pairs
// and pass through untouched; allow-listing happens per resource.
func Plan(query url.Values) (*Page, error) {
	page := &Page{
		Limit:   DefaultLimit,
		Filters: map[string]string{},
	}

	if raw := query.Get("limit"); raw != "" {
		limit, errParse := strconv.Atoi(raw)
		if errParse != nil {
			return nil, &Error{Param: "limit", Message: "Pagination limit must be a number."}
		}
		if limit < 1 {
			return nil, &Error{Param: "limit", Message: "Pagination limit must be greater than or equal to 1."}
		}
		if limit > MaxLimit {
			return nil, &Error{Param: "limit", Message: fmt.Sprintf("Pagination limit must be less than or equal to %d.", MaxLimit)}
		}
		page.Limit = limit
	}

	if raw := query.Get("after"); raw != "" {
		if after, errParse := strconv.Atoi(raw); errParse == nil && after >= 0 {
			page.After = &after
		}
	}
	if raw := query.Get("before"); raw != "" {
		if before, errParse := strconv.Atoi(raw); errParse == nil && before >= 0 {
			page.Before = &before
		}
	}

	page.Sort = strings.TrimSpace(query.Get("sort"))

	if order := query.Get("order"); order != "" {
		if order != "asc" && order != "desc" {
			return nil, &Error{Param: "order", Message: "Invalid order parameter."}
		}
		page.Order = order
	}

	for key, values := range query {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") || len(values) == 0 {
			continue
		}
		field := key[len("filter[") : len(key)-1]
		if field == "" {
			continue
		}
		page.Filters[field] = values[0]
	}

	return page, nil
}

// Coercer converts a raw filter value into a column and comparison value,
// letting a resource resolve e.g. a name-or-id reference.
type Coercer func(value string) (column string, coerced any)

// BuildFilters converts raw filters into a query predicate map.
//
// Keys outside the allow-list are dropped, not errors. Numeric-looking
// values are coerced to integers for equality comparison; everything else
// stays a string. A coercer registered for a field overrides the default
// handling entirely.
func BuildFilters(filters map[string]string, allowed []string, coercers map[string]Coercer) map[string]any {
	where := make(map[string]any, len(filters))
	for field, value := range filters {
		if !contains(allowed, field) {
			continue
		}
		if coercer, ok := coercers[field]; ok {
			column, coerced := coercer(value)
			if column != "" {
				where[column] = coerced
			}
			continue
		}
		if number, errParse := strconv.ParseInt(value, 10, 64); errParse == nil {
			where[field] = number
			continue
		}
		where[field] = value
	}
	return where
}

// Links renders the response Link header for the page.
//
// A prev link points at after-limit and appears only when after is
// positive; a next link points at after+limit and appears while before is
// below the total. This mirrors the offset heuristic the API has always
// exposed.
func Links(resourcePath string, limit, after, before, total int) string {
	links := make([]string, 0, 2)
	if after > 0 {
		links = append(links, fmt.Sprintf("<%s?limit=%d&after=%d>; rel=\"prev\"", resourcePath, limit, after-limit))
	}
	if before < total {
		links = append(links, fmt.Sprintf("<%s?limit=%d&after=%d>; rel=\"next\"", resourcePath, limit, after+limit))
	}
	return strings.Join(links, ", ")
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
