package jsonapi

import (
	"context"
	"fmt"
	"net/http"
)

// BulkItem is the canonical (attributes, relationships, id) triple that
// every bulk input shape reduces to.
type BulkItem struct {
	Attributes    map[string]interface{}
	Relationships map[string]interface{}
	ID            string
}

// extractBulkItem reduces a bulk input item to a BulkItem. Accepted shapes
// are *Resource, BulkItem (or a pointer to one), and a mapping with
// optional "attributes", "relationships" and "id" fields.
func extractBulkItem(item interface{}) (BulkItem, error) {
	switch v := item.(type) {
	case *Resource:
		relationships := make(map[string]interface{}, len(v.Relationships))
		for name, rel := range v.Relationships {
			relationships[name] = rel
		}

		return BulkItem{
			Attributes:    v.Attributes,
			Relationships: relationships,
			ID:            v.ID,
		}, nil
	case BulkItem:
		return v, nil
	case *BulkItem:
		if v == nil {
			return BulkItem{}, ErrInvalidBulkItem
		}

		return *v, nil
	case map[string]interface{}:
		extracted := BulkItem{}
		if attributes, ok := v["attributes"].(map[string]interface{}); ok {
			extracted.Attributes = attributes
		}

		if relationships, ok := v["relationships"].(map[string]interface{}); ok {
			extracted.Relationships = relationships
		}

		if id, ok := v["id"].(string); ok {
			extracted.ID = id
		}

		return extracted, nil
	default:
		return BulkItem{}, fmt.Errorf("%w, got %T", ErrInvalidBulkItem, item)
	}
}

// encodeBulkRelationships normalizes relationship values to singular
// relationship envelopes carrying bare identifiers.
func (a *API) encodeBulkRelationships(values map[string]interface{}) (map[string]*Relationship, error) {
	encoded := make(map[string]*Relationship, len(values))

	for name, value := range values {
		resource, ok := a.asResource(value)
		if !ok {
			return nil, fmt.Errorf("bulk relationship '%s': %w", name, ErrNotConvertible)
		}

		encoded[name] = resource.AsRelationship()
	}

	return encoded, nil
}

// BulkCreate creates resources in bulk with a single request carrying the
// bulk content-type profile. Items must not carry ids. The response wraps
// into an already-fetched Queryset with no extra request.
func (c *Collection) BulkCreate(ctx context.Context, items []interface{}) (*Queryset, error) {
	payload := make([]*ResourceObject, 0, len(items))

	for _, item := range items {
		extracted, err := extractBulkItem(item)
		if err != nil {
			return nil, err
		}

		if extracted.ID != "" {
			return nil, ErrIDSupplied
		}

		obj := &ResourceObject{Type: c.typ.Name}
		if len(extracted.Attributes) > 0 {
			obj.Attributes = extracted.Attributes
		}

		if len(extracted.Relationships) > 0 {
			obj.Relationships, err = c.api.encodeBulkRelationships(extracted.Relationships)
			if err != nil {
				return nil, err
			}
		}

		payload = append(payload, obj)
	}

	body, err := c.api.request(ctx, http.MethodPost, c.path(), nil,
		map[string]interface{}{"data": payload}, true)
	if err != nil {
		return nil, fmt.Errorf("bulk creating %s resources: %w", c.typ.Name, err)
	}

	return c.api.CollectionFromJSON(body)
}

// BulkUpdate updates resources in bulk. Every item must carry an id. When
// a field filter is given (explicitly or through the type's Editable
// list), both attributes and relationships are restricted to it.
func (c *Collection) BulkUpdate(ctx context.Context, items []interface{}, fields ...string) (*Queryset, error) {
	if len(fields) == 0 {
		fields = c.typ.Editable
	}

	payload := make([]*ResourceObject, 0, len(items))

	for _, item := range items {
		extracted, err := extractBulkItem(item)
		if err != nil {
			return nil, err
		}

		if extracted.ID == "" {
			return nil, ErrMissingID
		}

		attributes := extracted.Attributes
		relationships := extracted.Relationships

		if len(fields) > 0 {
			attributes = restrictFields(attributes, fields)
			relationships = restrictFields(relationships, fields)
		}

		obj := &ResourceObject{Type: c.typ.Name, ID: extracted.ID}
		if len(attributes) > 0 {
			obj.Attributes = attributes
		}

		if len(relationships) > 0 {
			obj.Relationships, err = c.api.encodeBulkRelationships(relationships)
			if err != nil {
				return nil, err
			}
		}

		payload = append(payload, obj)
	}

	body, err := c.api.request(ctx, http.MethodPatch, c.path(), nil,
		map[string]interface{}{"data": payload}, true)
	if err != nil {
		return nil, fmt.Errorf("bulk updating %s resources: %w", c.typ.Name, err)
	}

	return c.api.CollectionFromJSON(body)
}

// BulkDelete deletes resources in bulk; only identifiers are transmitted.
func (c *Collection) BulkDelete(ctx context.Context, items []interface{}) error {
	payload := make([]ResourceIdentifier, 0, len(items))

	for _, item := range items {
		resource, ok := c.api.asResource(item)
		if !ok {
			return fmt.Errorf("bulk deleting %s resources: %w", c.typ.Name, ErrNotConvertible)
		}

		payload = append(payload, resource.Identifier())
	}

	_, err := c.api.request(ctx, http.MethodDelete, c.path(), nil,
		map[string]interface{}{"data": payload}, true)
	if err != nil {
		return fmt.Errorf("bulk deleting %s resources: %w", c.typ.Name, err)
	}

	return nil
}

func restrictFields(values map[string]interface{}, fields []string) map[string]interface{} {
	if values == nil {
		return nil
	}

	restricted := make(map[string]interface{}, len(values))

	for _, field := range fields {
		if value, ok := values[field]; ok {
			restricted[field] = value
		}
	}

	return restricted
}
