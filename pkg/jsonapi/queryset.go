package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Queryset is a lazy, link-driven cursor over one page of a collection
// endpoint. It stays unfetched until the first access, then performs
// exactly one request and caches the page. Adjacent pages are reached
// through Next and Previous, which hand out fresh unfetched cursors.
type Queryset struct {
	api    *API
	url    string
	params *QueryParams

	fetched bool
	items   []*Resource
	links   PaginationLinks
}

func newQueryset(api *API, urlStr string, params *QueryParams) *Queryset {
	if params == nil {
		params = NewQueryParams()
	}

	return &Queryset{api: api, url: urlStr, params: params}
}

// CollectionFromJSON seeds an already-fetched Queryset from an in-hand
// collection response body, skipping the network round trip entirely.
func (a *API) CollectionFromJSON(body []byte) (*Queryset, error) {
	queryset := newQueryset(a, "", NewQueryParams())
	if err := queryset.populate(body); err != nil {
		return nil, err
	}

	return queryset, nil
}

// URL returns the anchoring URL of the cursor.
func (q *Queryset) URL() string {
	return q.url
}

// derive returns a new unfetched cursor at the same URL with adjusted
// parameters.
func (q *Queryset) derive(adjust func(*QueryParams)) *Queryset {
	params := q.params.Clone()
	adjust(params)

	return newQueryset(q.api, q.url, params)
}

// Filter returns a cursor with a filter applied. A later filter on the
// same key overrides the earlier one. Resource values reduce to their id.
func (q *Queryset) Filter(key string, value interface{}) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithFilter(key, filterValue(value))
	})
}

// Page returns a cursor with the plain page parameter applied.
func (q *Queryset) Page(value string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithPage(value)
	})
}

// PageBy returns a cursor with a named page parameter applied, eg
// "page[cursor]".
func (q *Queryset) PageBy(name, value string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithPageBy(name, value)
	})
}

// Include returns a cursor that side-loads the named relationships.
func (q *Queryset) Include(names ...string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithInclude(names...)
	})
}

// Sort returns a cursor with the sort fields applied.
func (q *Queryset) Sort(fields ...string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithSort(fields...)
	})
}

// Fields returns a cursor with a sparse fieldset applied.
func (q *Queryset) Fields(resourceType string, fields ...string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithFields(resourceType, fields...)
	})
}

// Extra returns a cursor with an arbitrary query parameter applied.
func (q *Queryset) Extra(key, value string) *Queryset {
	return q.derive(func(p *QueryParams) {
		p.WithExtra(key, value)
	})
}

func filterValue(value interface{}) string {
	switch v := value.(type) {
	case *Resource:
		return v.ID
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Fetch forces the unfetched-to-fetched transition. It is idempotent: at
// most one request is ever issued per cursor.
func (q *Queryset) Fetch(ctx context.Context) error {
	if q.fetched {
		return nil
	}

	body, err := q.api.request(ctx, http.MethodGet, q.url, q.params.ToValues(), nil, false)
	if err != nil {
		return fmt.Errorf("fetching collection %s: %w", q.url, err)
	}

	return q.populate(body)
}

func (q *Queryset) populate(body []byte) error {
	var doc CollectionDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("parsing collection response: %w", err)
	}

	items := make([]*Resource, 0, len(doc.Data))
	for _, obj := range doc.Data {
		items = append(items, q.api.Type(obj.Type).fromObject(obj, doc.Included))
	}

	q.items = items
	q.links = doc.Links
	q.fetched = true

	return nil
}

// Items returns the resources of the current page, fetching it first if
// needed.
func (q *Queryset) Items(ctx context.Context) ([]*Resource, error) {
	if err := q.Fetch(ctx); err != nil {
		return nil, err
	}

	return q.items, nil
}

// Len returns the number of resources on the current page.
func (q *Queryset) Len(ctx context.Context) (int, error) {
	if err := q.Fetch(ctx); err != nil {
		return 0, err
	}

	return len(q.items), nil
}

// At returns the resource at an index within the current page.
func (q *Queryset) At(ctx context.Context, index int) (*Resource, error) {
	if err := q.Fetch(ctx); err != nil {
		return nil, err
	}

	if index < 0 || index >= len(q.items) {
		return nil, fmt.Errorf("collection index %d: %w", index, ErrIndexOutOfRange)
	}

	return q.items[index], nil
}

// HasNext reports whether a next page link is present. Link knowledge
// requires the page, so this forces a fetch.
func (q *Queryset) HasNext(ctx context.Context) (bool, error) {
	if err := q.Fetch(ctx); err != nil {
		return false, err
	}

	return q.links.Next != "", nil
}

// HasPrevious reports whether a previous page link is present, forcing a
// fetch like HasNext.
func (q *Queryset) HasPrevious(ctx context.Context) (bool, error) {
	if err := q.Fetch(ctx); err != nil {
		return false, err
	}

	return q.links.Previous != "", nil
}

// Next returns a new, independently-unfetched cursor anchored at the next
// page link. The receiver is never mutated beyond its own lazy fetch.
func (q *Queryset) Next(ctx context.Context) (*Queryset, error) {
	if err := q.Fetch(ctx); err != nil {
		return nil, err
	}

	if q.links.Next == "" {
		return nil, ErrNoMoreItems
	}

	return newQueryset(q.api, q.links.Next, nil), nil
}

// Previous returns a new, independently-unfetched cursor anchored at the
// previous page link.
func (q *Queryset) Previous(ctx context.Context) (*Queryset, error) {
	if err := q.Fetch(ctx); err != nil {
		return nil, err
	}

	if q.links.Previous == "" {
		return nil, ErrNoMoreItems
	}

	return newQueryset(q.api, q.links.Previous, nil), nil
}

// ForEachPage walks the current page, then keeps following next links,
// yielding each whole page. Pages are fetched one at a time and dropped
// once passed.
func (q *Queryset) ForEachPage(ctx context.Context, fn func([]*Resource) error) error {
	page := q

	for {
		if err := page.Fetch(ctx); err != nil {
			return err
		}

		if err := fn(page.items); err != nil {
			return err
		}

		if page.links.Next == "" {
			return nil
		}

		page = newQueryset(q.api, page.links.Next, nil)
	}
}

// ForEach walks every resource of every page in link order, starting at
// the current cursor.
func (q *Queryset) ForEach(ctx context.Context, fn func(*Resource) error) error {
	return q.ForEachPage(ctx, func(items []*Resource) error {
		for _, item := range items {
			if err := fn(item); err != nil {
				return err
			}
		}

		return nil
	})
}

// All collects every resource of every page into one slice.
func (q *Queryset) All(ctx context.Context) ([]*Resource, error) {
	var all []*Resource

	err := q.ForEachPage(ctx, func(items []*Resource) error {
		all = append(all, items...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return all, nil
}
