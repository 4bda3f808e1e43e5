package jsonapi

import (
	"fmt"
	"net/url"
	"strings"
)

// QueryParams represents query parameters for collection requests.
type QueryParams struct {
	Filters map[string]string
	Pages   map[string]string
	Include []string
	Sort    []string
	Fields  map[string][]string
	Extra   url.Values
}

// NewQueryParams creates a new QueryParams instance.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string]string),
		Pages:   make(map[string]string),
		Fields:  make(map[string][]string),
		Extra:   url.Values{},
	}
}

// Clone returns an independent copy.
func (p *QueryParams) Clone() *QueryParams {
	clone := NewQueryParams()

	for key, value := range p.Filters {
		clone.Filters[key] = value
	}

	for key, value := range p.Pages {
		clone.Pages[key] = value
	}

	clone.Include = append(clone.Include, p.Include...)
	clone.Sort = append(clone.Sort, p.Sort...)

	for key, values := range p.Fields {
		clone.Fields[key] = append([]string(nil), values...)
	}

	for key, values := range p.Extra {
		clone.Extra[key] = append([]string(nil), values...)
	}

	return clone
}

// WithFilter sets a filter. A later call with the same key overrides the
// earlier value. The key may carry its own bracket suffix, eg "age[gt]".
func (p *QueryParams) WithFilter(key, value string) *QueryParams {
	p.Filters[key] = value

	return p
}

// WithPage sets the plain "page" parameter.
func (p *QueryParams) WithPage(value string) *QueryParams {
	p.Pages[""] = value

	return p
}

// WithPageBy sets a named page parameter, eg "page[cursor]".
func (p *QueryParams) WithPageBy(name, value string) *QueryParams {
	p.Pages[name] = value

	return p
}

// WithInclude appends relationship names to the include parameter.
func (p *QueryParams) WithInclude(names ...string) *QueryParams {
	p.Include = append(p.Include, names...)

	return p
}

// WithSort replaces the sort fields.
func (p *QueryParams) WithSort(fields ...string) *QueryParams {
	p.Sort = fields

	return p
}

// WithFields replaces the sparse fieldset for a resource type.
func (p *QueryParams) WithFields(resourceType string, fields ...string) *QueryParams {
	p.Fields[resourceType] = fields

	return p
}

// WithExtra sets an arbitrary query parameter untouched.
func (p *QueryParams) WithExtra(key, value string) *QueryParams {
	p.Extra.Set(key, value)

	return p
}

// ToValues converts the parameters to url.Values.
func (p *QueryParams) ToValues() url.Values {
	values := url.Values{}

	for key, value := range p.Filters {
		values.Set(filterKey(key), value)
	}

	for key, value := range p.Pages {
		if key == "" {
			values.Set("page", value)
		} else {
			values.Set(fmt.Sprintf("page[%s]", key), value)
		}
	}

	if len(p.Include) > 0 {
		values.Set("include", strings.Join(p.Include, ","))
	}

	if len(p.Sort) > 0 {
		values.Set("sort", strings.Join(p.Sort, ","))
	}

	for resourceType, fields := range p.Fields {
		values.Set(fmt.Sprintf("fields[%s]", resourceType), strings.Join(fields, ","))
	}

	for key, vals := range p.Extra {
		for _, value := range vals {
			values.Add(key, value)
		}
	}

	return values
}

// filterKey wraps a filter name in the filter[...] convention. A bracketed
// suffix on the name is preserved: "age[gt]" becomes "filter[age][gt]".
func filterKey(key string) string {
	if idx := strings.Index(key, "["); idx >= 0 {
		return fmt.Sprintf("filter[%s]%s", key[:idx], key[idx:])
	}

	return fmt.Sprintf("filter[%s]", key)
}
