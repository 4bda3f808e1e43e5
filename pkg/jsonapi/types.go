package jsonapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ResourceIdentifier is the minimal {type, id} pair identifying a resource
// without its fields.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// RelationshipLinks are the links carried by a relationship descriptor.
type RelationshipLinks struct {
	Self    string `json:"self,omitempty"`
	Related string `json:"related,omitempty"`
}

// Relationship is the decoded form of a wire relationship descriptor.
//
// A nil *Relationship stands for the wire value `null`, ie a singular
// relationship known to be empty. A non-nil descriptor is singular when it
// carries a `data` key and plural otherwise; the presence of the `data` key
// is the sole discriminator and both marshaling directions preserve it
// bit-exactly.
type Relationship struct {
	Data  *ResourceIdentifier
	Links *RelationshipLinks

	// set when the wire form carried a `data` key, even a null one
	hasData bool
}

// Plural reports whether the descriptor describes a plural relationship.
func (r *Relationship) Plural() bool {
	return r != nil && r.Data == nil && !r.hasData
}

// Singular reports whether the descriptor describes a non-empty singular
// relationship. A nil descriptor is singular too, but has no identifier.
func (r *Relationship) Singular() bool {
	return r == nil || r.Data != nil || r.hasData
}

type relationshipWire struct {
	Data  json.RawMessage    `json:"data,omitempty"`
	Links *RelationshipLinks `json:"links,omitempty"`
}

// UnmarshalJSON decodes a non-null descriptor, remembering whether the
// `data` key was present so Plural stays accurate.
func (r *Relationship) UnmarshalJSON(data []byte) error {
	var wire struct {
		Data  *ResourceIdentifier `json:"data"`
		Links *RelationshipLinks  `json:"links"`
	}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	_, hasData := keys["data"]
	r.Data = wire.Data
	r.Links = wire.Links
	r.hasData = hasData

	return nil
}

// MarshalJSON encodes the descriptor, emitting an explicit `data` key for
// singular descriptors and omitting it for plural ones.
func (r *Relationship) MarshalJSON() ([]byte, error) {
	wire := relationshipWire{Links: r.Links}

	if r.Data != nil || r.hasData {
		data, err := json.Marshal(r.Data)
		if err != nil {
			return nil, err
		}

		wire.Data = data
	}

	return json.Marshal(wire)
}

// ResourceObject is the canonical wire representation of one resource.
type ResourceObject struct {
	Type          string                   `json:"type"`
	ID            string                   `json:"id,omitempty"`
	Attributes    map[string]interface{}   `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Links         map[string]string        `json:"links,omitempty"`
}

// Document is a single-resource response envelope.
type Document struct {
	Data     *ResourceObject   `json:"data"`
	Included []*ResourceObject `json:"included,omitempty"`
}

// PaginationLinks are the pagination links of a collection response.
type PaginationLinks struct {
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
}

// CollectionDocument is a collection response envelope.
type CollectionDocument struct {
	Data     []*ResourceObject `json:"data"`
	Links    PaginationLinks   `json:"links,omitempty"`
	Included []*ResourceObject `json:"included,omitempty"`
}

// Request describes one HTTP exchange to be executed by a Transport.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers http.Header
	Body    []byte

	// Bulk requests are sent with the bulk content-type profile.
	Bulk bool
}

// Response is the outcome of a successful Transport exchange.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Transport executes a single HTTP exchange. Implementations return a
// non-nil error for any non-success response; the core never retries or
// swallows these errors.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
