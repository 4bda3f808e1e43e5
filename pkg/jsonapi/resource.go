package jsonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ErrEmptyData indicates a response document without a data member.
var ErrEmptyData = errors.New("response document carries no data")

// Resource is the entity model of one remote resource: identity,
// attributes, relationship descriptors and a lazily-populated cache of
// related objects. The related cache is an in-memory side table and never
// part of the wire payload.
type Resource struct {
	ID            string
	Attributes    map[string]interface{}
	Relationships map[string]*Relationship
	Links         map[string]string

	api *API
	typ Type

	// related holds, per relationship name, a *Resource (singular, nil for
	// a known-empty one) or a *Queryset (plural).
	related map[string]interface{}
}

// ResourceParams are the named-field construction inputs of a Resource.
// Relationship values may be *Relationship descriptors, *Resource
// instances, ResourceIdentifier values, raw descriptor maps, or nil.
type ResourceParams struct {
	Type          string
	ID            string
	Attributes    map[string]interface{}
	Relationships map[string]interface{}
	Links         map[string]string
}

// New constructs a resource of the collection's type from named fields.
// Supplying a Type that disagrees with the collection is an error.
func (c *Collection) New(params ResourceParams) (*Resource, error) {
	if params.Type != "" && params.Type != c.typ.Name {
		return nil, fmt.Errorf("constructing '%s' resource with type '%s': %w",
			c.typ.Name, params.Type, ErrTypeMismatch)
	}

	resource := c.newIdentifierOnly(params.ID)
	for key, value := range params.Attributes {
		resource.Attributes[key] = value
	}

	for key, value := range params.Links {
		resource.Links[key] = value
	}

	if err := resource.setRelationships(params.Relationships); err != nil {
		return nil, err
	}

	return resource, nil
}

// FromJSON constructs a resource of the collection's type from a payload:
// either a full response envelope or a bare resource object. The shape is
// detected by the presence of a `data` key and unwrapped once.
func (c *Collection) FromJSON(body []byte) (*Resource, error) {
	obj, included, err := decodePayload(body)
	if err != nil {
		return nil, err
	}

	if obj.Type != "" && obj.Type != c.typ.Name {
		return nil, fmt.Errorf("constructing '%s' resource with type '%s': %w",
			c.typ.Name, obj.Type, ErrTypeMismatch)
	}

	return c.fromObject(obj, included), nil
}

// ResourceFromJSON constructs a resource from a payload, dispatching on the
// payload's own type tag through the registry.
func (a *API) ResourceFromJSON(body []byte) (*Resource, error) {
	obj, included, err := decodePayload(body)
	if err != nil {
		return nil, err
	}

	if obj.Type == "" {
		return nil, ErrMissingType
	}

	return a.Type(obj.Type).fromObject(obj, included), nil
}

// FromIdentifier constructs an identifier-only resource, typically to
// Reload it later or to traverse from an in-hand relationship without a
// round trip.
func (a *API) FromIdentifier(identifier ResourceIdentifier) *Resource {
	return a.Type(identifier.Type).newIdentifierOnly(identifier.ID)
}

// FromRelationship constructs an identifier-only resource from a singular,
// non-null relationship descriptor.
func (a *API) FromRelationship(rel *Relationship) (*Resource, error) {
	if rel == nil || rel.Data == nil {
		return nil, ErrNotSingular
	}

	return a.FromIdentifier(*rel.Data), nil
}

func (c *Collection) newIdentifierOnly(id string) *Resource {
	return &Resource{
		ID:            id,
		Attributes:    make(map[string]interface{}),
		Relationships: make(map[string]*Relationship),
		Links:         make(map[string]string),
		api:           c.api,
		typ:           c.typ,
		related:       make(map[string]interface{}),
	}
}

func (c *Collection) fromObject(obj *ResourceObject, included []*ResourceObject) *Resource {
	resource := c.newIdentifierOnly("")
	resource.overwrite(obj, included, nil)

	return resource
}

// decodePayload reduces the accepted payload shapes to a bare resource
// object plus any sideloaded included objects.
func decodePayload(body []byte) (*ResourceObject, []*ResourceObject, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, nil, fmt.Errorf("parsing resource payload: %w", err)
	}

	if data, ok := keys["data"]; ok {
		if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
			return nil, nil, ErrUnexpectedCollection
		}

		var doc Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, nil, fmt.Errorf("parsing resource document: %w", err)
		}

		if doc.Data == nil {
			return nil, nil, ErrEmptyData
		}

		return doc.Data, doc.Included, nil
	}

	var obj ResourceObject
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, nil, fmt.Errorf("parsing resource object: %w", err)
	}

	return &obj, nil, nil
}

// overwrite replaces the resource's state from a wire object. Used by
// construction, Reload and Save. The related side table is rebuilt from
// the relationship descriptors, enriched by included objects, then by any
// explicitly carried-over entries.
func (r *Resource) overwrite(obj *ResourceObject, included []*ResourceObject, related map[string]interface{}) {
	r.ID = obj.ID

	r.Attributes = make(map[string]interface{}, len(obj.Attributes))
	for key, value := range obj.Attributes {
		r.Attributes[key] = value
	}

	r.Relationships = make(map[string]*Relationship, len(obj.Relationships))
	for key, value := range obj.Relationships {
		r.Relationships[key] = value
	}

	r.Links = make(map[string]string, len(obj.Links))
	for key, value := range obj.Links {
		r.Links[key] = value
	}

	r.related = make(map[string]interface{})

	for name, rel := range r.Relationships {
		if rel == nil || (rel.hasData && rel.Data == nil) {
			r.related[name] = (*Resource)(nil)
		} else if rel.Data != nil {
			r.related[name] = r.api.FromIdentifier(*rel.Data)
		}
	}

	r.resolveIncluded(included)

	for name, value := range related {
		r.related[name] = value
	}
}

// resolveIncluded populates the related cache for every singular
// relationship whose identifier matches an included object. No network.
func (r *Resource) resolveIncluded(included []*ResourceObject) {
	if len(included) == 0 {
		return
	}

	lookup := make(map[ResourceIdentifier]*ResourceObject, len(included))
	for _, obj := range included {
		lookup[ResourceIdentifier{Type: obj.Type, ID: obj.ID}] = obj
	}

	for name, rel := range r.Relationships {
		if rel == nil || rel.Data == nil {
			continue
		}

		if obj, ok := lookup[*rel.Data]; ok {
			r.related[name] = r.api.Type(obj.Type).fromObject(obj, nil)
		}
	}
}

// setRelationships normalizes heterogeneous relationship values into
// descriptors, seeding the related cache when full instances are given.
func (r *Resource) setRelationships(values map[string]interface{}) error {
	for name, value := range values {
		switch v := value.(type) {
		case nil:
			r.Relationships[name] = nil
			r.related[name] = (*Resource)(nil)
		case *Resource:
			r.Relationships[name] = v.AsRelationship()
			r.related[name] = v
		case *Relationship:
			r.Relationships[name] = v
			if v != nil && v.Data != nil {
				r.related[name] = r.api.FromIdentifier(*v.Data)
			}
		case ResourceIdentifier:
			r.Relationships[name] = &Relationship{Data: &v}
			r.related[name] = r.api.FromIdentifier(v)
		case *ResourceIdentifier:
			identifier := *v
			r.Relationships[name] = &Relationship{Data: &identifier}
			r.related[name] = r.api.FromIdentifier(identifier)
		default:
			resource, ok := r.api.asResource(value)
			if !ok {
				return fmt.Errorf("relationship '%s': %w", name, ErrNotConvertible)
			}

			r.Relationships[name] = resource.AsRelationship()
			r.related[name] = resource
		}
	}

	return nil
}

// asResource attempts a best-effort conversion of an arbitrary value to a
// Resource. The second return value reports success; callers fall back to
// the raw value on failure instead of failing outright.
func (a *API) asResource(value interface{}) (*Resource, bool) {
	switch v := value.(type) {
	case *Resource:
		return v, true
	case ResourceIdentifier:
		return a.FromIdentifier(v), true
	case *ResourceIdentifier:
		if v == nil {
			return nil, false
		}

		return a.FromIdentifier(*v), true
	case *Relationship:
		if v == nil || v.Data == nil {
			return nil, false
		}

		return a.FromIdentifier(*v.Data), true
	case map[string]interface{}:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}

		resource, err := a.ResourceFromJSON(body)
		if err != nil {
			return nil, false
		}

		return resource, true
	default:
		return nil, false
	}
}

// Type returns the resource's wire type name.
func (r *Resource) Type() string {
	return r.typ.Name
}

// Identifier returns the bare {type, id} resource identifier.
func (r *Resource) Identifier() ResourceIdentifier {
	return ResourceIdentifier{Type: r.typ.Name, ID: r.ID}
}

// AsRelationship returns the resource encoded as a singular relationship
// envelope.
func (r *Resource) AsRelationship() *Relationship {
	identifier := r.Identifier()

	return &Relationship{Data: &identifier}
}

// Matches reports whether other encodes the same (type, id) pair,
// regardless of attribute or relationship contents. Values that cannot be
// converted to a resource never match.
func (r *Resource) Matches(other interface{}) bool {
	resource, ok := r.api.asResource(other)
	if !ok || resource == nil {
		return false
	}

	return r.Identifier() == resource.Identifier()
}

// SameResource reports whether two resources encode the same (type, id)
// pair. Nil resources never match.
func SameResource(a, b *Resource) bool {
	if a == nil || b == nil {
		return false
	}

	return a.Identifier() == b.Identifier()
}

// FieldKind tags the outcome of a Get or Set field lookup.
type FieldKind int

const (
	// FieldUnknown means the name matches neither an attribute nor a
	// relationship.
	FieldUnknown FieldKind = iota

	// FieldAttribute means the name is a key in Attributes.
	FieldAttribute

	// FieldSingular means the name is a singular relationship.
	FieldSingular

	// FieldPlural means the name is a plural relationship.
	FieldPlural
)

// Kind classifies a field name. Attributes shadow relationships.
func (r *Resource) Kind(name string) FieldKind {
	if _, ok := r.Attributes[name]; ok {
		return FieldAttribute
	}

	if rel, ok := r.Relationships[name]; ok {
		if rel.Plural() {
			return FieldPlural
		}

		return FieldSingular
	}

	return FieldUnknown
}

// Get reads a field by name: the attribute value, or the resolved related
// entry for a relationship (possibly nil when unresolved or known-empty).
func (r *Resource) Get(name string) (interface{}, FieldKind) {
	switch kind := r.Kind(name); kind {
	case FieldAttribute:
		return r.Attributes[name], kind
	case FieldSingular:
		if resource, ok := r.related[name].(*Resource); ok && resource != nil {
			return resource, kind
		}

		return nil, kind
	case FieldPlural:
		if queryset, ok := r.related[name].(*Queryset); ok {
			return queryset, kind
		}

		return nil, kind
	default:
		return nil, FieldUnknown
	}
}

// Related returns the cached related resource of a singular relationship,
// or nil when the relationship is empty or unresolved.
func (r *Resource) Related(name string) *Resource {
	resource, _ := r.related[name].(*Resource)

	return resource
}

// RelatedList returns the cached Queryset of a plural relationship, or nil
// before the relationship has been fetched.
func (r *Resource) RelatedList(name string) *Queryset {
	queryset, _ := r.related[name].(*Queryset)

	return queryset
}

// Set writes a field by name. Attribute writes pass through to the
// Attributes map. A singular relationship write normalizes the value to a
// resource, replaces the descriptor with its encoded identifier and
// updates the related cache. Plural relationships cannot be assigned
// directly and unknown names are rejected.
func (r *Resource) Set(name string, value interface{}) error {
	switch r.Kind(name) {
	case FieldAttribute:
		r.Attributes[name] = value

		return nil
	case FieldSingular:
		resource, ok := r.api.asResource(value)
		if !ok {
			return fmt.Errorf("setting relationship '%s': %w", name, ErrNotConvertible)
		}

		r.Relationships[name] = resource.AsRelationship()
		r.related[name] = resource

		return nil
	case FieldPlural:
		return &PluralRelationshipError{Resource: r.typ.Name, Relationship: name}
	default:
		return fmt.Errorf("%w: '%s' on resource '%s'", ErrUnknownField, name, r.typ.Name)
	}
}

// itemURL resolves the canonical item URL, preferring the self link.
func (r *Resource) itemURL() string {
	if self, ok := r.Links["self"]; ok && self != "" {
		return self
	}

	return fmt.Sprintf("/%s/%s", r.typ.Name, r.ID)
}

// Reload fetches fresh data from the server and overwrites the resource in
// place.
func (r *Resource) Reload(ctx context.Context, include ...string) error {
	var query url.Values
	if len(include) > 0 {
		query = url.Values{"include": []string{strings.Join(include, ",")}}
	}

	body, err := r.api.request(ctx, http.MethodGet, r.itemURL(), query, nil, false)
	if err != nil {
		return fmt.Errorf("reloading %s resource: %w", r.typ.Name, err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("parsing resource response: %w", err)
	}

	if doc.Data == nil {
		return fmt.Errorf("parsing resource response: %w", ErrEmptyData)
	}

	r.overwrite(doc.Data, doc.Included, nil)

	return nil
}

// Fetch resolves the named relationships, skipping ones that are already
// resolved: a singular relationship counts as resolved once its cached
// resource carries any attributes or relationships, a plural one once a
// Queryset is cached.
func (r *Resource) Fetch(ctx context.Context, names ...string) error {
	return r.fetch(ctx, false, names)
}

// Refetch resolves the named relationships unconditionally, replacing any
// previously cached state.
func (r *Resource) Refetch(ctx context.Context, names ...string) error {
	return r.fetch(ctx, true, names)
}

func (r *Resource) fetch(ctx context.Context, force bool, names []string) error {
	for _, name := range names {
		rel, ok := r.Relationships[name]
		if !ok {
			return &UnknownRelationshipError{Resource: r.typ.Name, Relationship: name}
		}

		if rel == nil || (rel.hasData && rel.Data == nil) {
			continue
		}

		if rel.Data != nil {
			if err := r.fetchSingular(ctx, name, rel, force); err != nil {
				return err
			}

			continue
		}

		if err := r.fetchPlural(name, rel, force); err != nil {
			return err
		}
	}

	return nil
}

func (r *Resource) fetchSingular(ctx context.Context, name string, rel *Relationship, force bool) error {
	cached, _ := r.related[name].(*Resource)
	if cached != nil && (len(cached.Attributes) > 0 || len(cached.Relationships) > 0) && !force {
		return nil
	}

	if cached == nil {
		cached = r.api.FromIdentifier(*rel.Data)
		r.related[name] = cached
	}

	if err := cached.Reload(ctx); err != nil {
		return fmt.Errorf("fetching relationship '%s': %w", name, err)
	}

	return nil
}

func (r *Resource) fetchPlural(name string, rel *Relationship, force bool) error {
	if _, ok := r.related[name].(*Queryset); ok && !force {
		return nil
	}

	if rel.Links == nil || rel.Links.Related == "" {
		return fmt.Errorf("fetching relationship '%s': %w", name, ErrNoRelatedLink)
	}

	r.related[name] = newQueryset(r.api, rel.Links.Related, NewQueryParams())

	return nil
}

// Save persists the resource. A resource without an id is created against
// the collection endpoint; one with an id is partially updated with the
// explicit field list, the type's Editable list, or everything currently
// set, in that priority order. The response is reconciled back into the
// resource, including the cached singular related objects.
func (r *Resource) Save(ctx context.Context, fields ...string) error {
	var (
		body []byte
		err  error
	)

	if r.ID != "" {
		body, err = r.saveExisting(ctx, fields)
	} else {
		body, err = r.saveNew(ctx)
	}

	if err != nil {
		return err
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("parsing save response: %w", err)
	}

	if doc.Data == nil {
		return fmt.Errorf("parsing save response: %w", ErrEmptyData)
	}

	r.overwrite(doc.Data, doc.Included, r.reconcileRelated(doc.Data))

	return nil
}

// reconcileRelated diffs the cached singular related objects against the
// identifiers in the save response: a changed non-null id yields a fresh
// unresolved resource, a change to null drops the entry, plural caches are
// left untouched.
func (r *Resource) reconcileRelated(data *ResourceObject) map[string]interface{} {
	related := make(map[string]interface{}, len(r.related))
	for name, value := range r.related {
		related[name] = value
	}

	for name, cached := range related {
		if _, isPlural := cached.(*Queryset); isPlural {
			continue
		}

		var currentID string
		if resource, ok := cached.(*Resource); ok && resource != nil {
			currentID = resource.ID
		}

		var newID string
		if rel, ok := data.Relationships[name]; ok && rel != nil && rel.Data != nil {
			newID = rel.Data.ID
		}

		if currentID == newID {
			continue
		}

		if newID != "" {
			related[name] = r.api.FromIdentifier(*data.Relationships[name].Data)
		} else {
			delete(related, name)
		}
	}

	return related
}

func (r *Resource) saveExisting(ctx context.Context, fields []string) ([]byte, error) {
	payload := &ResourceObject{Type: r.typ.Name, ID: r.ID}

	editable := fields
	if len(editable) == 0 {
		editable = r.typ.Editable
	}

	if len(editable) > 0 {
		for _, field := range editable {
			if value, ok := r.Attributes[field]; ok {
				if payload.Attributes == nil {
					payload.Attributes = make(map[string]interface{})
				}

				payload.Attributes[field] = value
			} else if rel, ok := r.Relationships[field]; ok {
				if payload.Relationships == nil {
					payload.Relationships = make(map[string]*Relationship)
				}

				payload.Relationships[field] = rel
			}
		}
	} else {
		if len(r.Attributes) > 0 {
			payload.Attributes = r.Attributes
		}

		if len(r.Relationships) > 0 {
			payload.Relationships = r.Relationships
		}
	}

	body, err := r.api.request(ctx, http.MethodPatch, r.itemURL(), nil, Document{Data: payload}, false)
	if err != nil {
		return nil, fmt.Errorf("updating %s resource: %w", r.typ.Name, err)
	}

	return body, nil
}

func (r *Resource) saveNew(ctx context.Context) ([]byte, error) {
	payload := &ResourceObject{Type: r.typ.Name}
	if len(r.Attributes) > 0 {
		payload.Attributes = r.Attributes
	}

	if len(r.Relationships) > 0 {
		payload.Relationships = r.Relationships
	}

	body, err := r.api.request(ctx, http.MethodPost, "/"+r.typ.Name, nil, Document{Data: payload}, false)
	if err != nil {
		return nil, fmt.Errorf("creating %s resource: %w", r.typ.Name, err)
	}

	return body, nil
}

// Create constructs a resource from named fields and immediately saves it.
// Client-generated identifiers are unsupported, so a supplied id is an
// error.
func (c *Collection) Create(ctx context.Context, params ResourceParams) (*Resource, error) {
	resource, err := c.New(params)
	if err != nil {
		return nil, err
	}

	if resource.ID != "" {
		return nil, ErrIDSupplied
	}

	if err := resource.Save(ctx); err != nil {
		return nil, err
	}

	return resource, nil
}

// Delete removes the resource on the server and clears the local id. The
// instance stays usable as a detached shell.
func (r *Resource) Delete(ctx context.Context) error {
	if _, err := r.api.request(ctx, http.MethodDelete, r.itemURL(), nil, nil, false); err != nil {
		return fmt.Errorf("deleting %s resource: %w", r.typ.Name, err)
	}

	r.ID = ""

	return nil
}

// Change replaces a singular relationship through its own `self` link,
// then updates the local descriptor and related cache to match.
func (r *Resource) Change(ctx context.Context, name string, value interface{}) error {
	rel, ok := r.Relationships[name]
	if !ok {
		return &UnknownRelationshipError{Resource: r.typ.Name, Relationship: name}
	}

	if rel.Plural() {
		return fmt.Errorf("changing relationship '%s': %w", name, ErrNotSingular)
	}

	resource, ok := r.api.asResource(value)
	if !ok {
		return fmt.Errorf("changing relationship '%s': %w", name, ErrNotConvertible)
	}

	identifier := resource.Identifier()
	if err := r.editRelationship(ctx, http.MethodPatch, rel, name, identifier); err != nil {
		return err
	}

	rel.Data = &identifier
	rel.hasData = true
	r.related[name] = resource

	return nil
}

// Add adds items to a plural relationship. The related cache is left
// untouched; refetch the relationship to observe the change.
func (r *Resource) Add(ctx context.Context, name string, values []interface{}) error {
	return r.editPlural(ctx, http.MethodPost, name, values)
}

// Remove removes items from a plural relationship. The related cache is
// left untouched; refetch the relationship to observe the change.
func (r *Resource) Remove(ctx context.Context, name string, values []interface{}) error {
	return r.editPlural(ctx, http.MethodDelete, name, values)
}

// Reset completely rewrites a plural relationship. The related cache is
// left untouched; refetch the relationship to observe the change.
func (r *Resource) Reset(ctx context.Context, name string, values []interface{}) error {
	return r.editPlural(ctx, http.MethodPatch, name, values)
}

func (r *Resource) editPlural(ctx context.Context, method, name string, values []interface{}) error {
	rel, ok := r.Relationships[name]
	if !ok {
		return &UnknownRelationshipError{Resource: r.typ.Name, Relationship: name}
	}

	if !rel.Plural() {
		return fmt.Errorf("editing relationship '%s': %w", name, ErrNotPlural)
	}

	identifiers := make([]ResourceIdentifier, 0, len(values))

	for _, value := range values {
		resource, ok := r.api.asResource(value)
		if !ok {
			return fmt.Errorf("editing relationship '%s': %w", name, ErrNotConvertible)
		}

		identifiers = append(identifiers, resource.Identifier())
	}

	return r.editRelationship(ctx, method, rel, name, identifiers)
}

func (r *Resource) editRelationship(ctx context.Context, method string, rel *Relationship, name string, data interface{}) error {
	if rel == nil || rel.Links == nil || rel.Links.Self == "" {
		return fmt.Errorf("editing relationship '%s': %w", name, ErrNoSelfLink)
	}

	payload := map[string]interface{}{"data": data}
	if _, err := r.api.request(ctx, method, rel.Links.Self, nil, payload, false); err != nil {
		return fmt.Errorf("editing relationship '%s': %w", name, err)
	}

	return nil
}
