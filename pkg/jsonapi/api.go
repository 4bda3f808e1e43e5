package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// API is the entry point of the mapping layer: it couples a Transport with
// a type registry and hands out per-type Collections.
type API struct {
	transport Transport
	registry  *Registry
}

// New creates an API handle over a Transport.
func New(transport Transport) (*API, error) {
	if transport == nil {
		return nil, ErrTransportRequired
	}

	return &API{
		transport: transport,
		registry:  NewRegistry(),
	}, nil
}

// Register declares resource types on the underlying registry.
func (a *API) Register(types ...Type) {
	a.registry.Register(types...)
}

// Registry returns the underlying registry.
func (a *API) Registry() *Registry {
	return a.registry
}

// Resolve returns the declared Type for a name, or its generic fallback.
func (a *API) Resolve(name string) Type {
	return a.registry.Resolve(name)
}

// Type returns the operation surface for a resource type. The type does
// not need to be registered; unregistered names resolve to a generic
// fallback retaining the tag.
func (a *API) Type(name string) *Collection {
	return &Collection{api: a, typ: a.registry.Resolve(name)}
}

// request marshals an optional payload, executes one exchange and returns
// the response body. Transport failures propagate unchanged.
func (a *API) request(ctx context.Context, method, urlStr string, query url.Values, payload interface{}, bulk bool) ([]byte, error) {
	req := &Request{
		Method: method,
		URL:    urlStr,
		Query:  query,
		Bulk:   bulk,
	}

	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request payload: %w", err)
		}

		req.Body = body
	}

	resp, err := a.transport.Execute(ctx, req)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// Collection is the operation surface of one resource type: item lookup,
// collection listing with query passthrough, creation and bulk operations.
type Collection struct {
	api *API
	typ Type
}

// Name returns the wire type name served by the collection.
func (c *Collection) Name() string {
	return c.typ.Name
}

func (c *Collection) path() string {
	return "/" + c.typ.Name
}

// Get fetches a single resource by id.
func (c *Collection) Get(ctx context.Context, id string, include ...string) (*Resource, error) {
	resource := c.newIdentifierOnly(id)
	if err := resource.Reload(ctx, include...); err != nil {
		return nil, err
	}

	return resource, nil
}

// List returns an unfetched Queryset anchored at the collection endpoint.
func (c *Collection) List() *Queryset {
	return newQueryset(c.api, c.path(), NewQueryParams())
}

// Filter is a Queryset builder passthrough.
func (c *Collection) Filter(key string, value interface{}) *Queryset {
	return c.List().Filter(key, value)
}

// Page is a Queryset builder passthrough.
func (c *Collection) Page(value string) *Queryset {
	return c.List().Page(value)
}

// PageBy is a Queryset builder passthrough.
func (c *Collection) PageBy(name, value string) *Queryset {
	return c.List().PageBy(name, value)
}

// Include is a Queryset builder passthrough.
func (c *Collection) Include(names ...string) *Queryset {
	return c.List().Include(names...)
}

// Sort is a Queryset builder passthrough.
func (c *Collection) Sort(fields ...string) *Queryset {
	return c.List().Sort(fields...)
}

// Fields is a Queryset builder passthrough.
func (c *Collection) Fields(resourceType string, fields ...string) *Queryset {
	return c.List().Fields(resourceType, fields...)
}

// Extra is a Queryset builder passthrough.
func (c *Collection) Extra(key, value string) *Queryset {
	return c.List().Extra(key, value)
}
