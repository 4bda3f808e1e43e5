package jsonapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a single error object from a JSON:API error response.
type APIError struct {
	Status string `json:"status,omitempty"`
	Code   string `json:"code,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}

	return e.Title
}

// ResponseError is the decoded error response of a failed request, carrying
// the HTTP status and the server's errors array.
type ResponseError struct {
	StatusCode int        `json:"-"`
	Errors     []APIError `json:"errors"`
}

// Error implements the error interface for ResponseError.
func (e *ResponseError) Error() string {
	switch len(e.Errors) {
	case 0:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	case 1:
		return fmt.Sprintf("%s (status: %d)", e.Errors[0].Error(), e.StatusCode)
	default:
		return fmt.Sprintf("multiple errors: %v (status: %d)", e.Errors, e.StatusCode)
	}
}

// FirstError returns the first error object or nil.
func (e *ResponseError) FirstError() *APIError {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// ParseResponseError decodes the body of a failed response. A body that is
// not a JSON:API errors document yields a ResponseError with no error
// objects, keeping the status code.
func ParseResponseError(statusCode int, body []byte) *ResponseError {
	errResp := &ResponseError{StatusCode: statusCode}
	_ = json.Unmarshal(body, errResp)

	return errResp
}

// IsNotFound checks if the error is a not-found response.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is an authorization failure.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	errResp := &ResponseError{}
	if errors.As(err, &errResp) {
		return errResp.StatusCode == status
	}

	return false
}

// Static errors for err113 compliance.
var (
	ErrConfigRequired       = errors.New("config is required")
	ErrEndpointRequired     = errors.New("endpoint is required")
	ErrTransportRequired    = errors.New("transport is required")
	ErrTypeMismatch         = errors.New("supplied type does not match the resource type")
	ErrMissingType          = errors.New("resource payload carries no type")
	ErrIDSupplied           = errors.New("'id' supplied as part of a new instance")
	ErrMissingID            = errors.New("'id' not supplied as part of an update operation")
	ErrUnknownField         = errors.New("unknown field")
	ErrNotSingular          = errors.New("relationship is not singular")
	ErrNotPlural            = errors.New("relationship is not plural")
	ErrNoSelfLink           = errors.New("relationship has no 'self' link")
	ErrNoRelatedLink        = errors.New("relationship has no 'related' link")
	ErrNoMoreItems          = errors.New("no more items")
	ErrIndexOutOfRange      = errors.New("index out of range")
	ErrNotConvertible       = errors.New("value cannot be converted to a resource")
	ErrInvalidBulkItem      = errors.New("bulk item must be a resource, a map or a BulkItem")
	ErrUnexpectedCollection = errors.New("payload data is a collection, not a single resource")
)

// UnknownRelationshipError is returned when a fetch names a relationship
// the resource does not have.
type UnknownRelationshipError struct {
	Resource     string
	Relationship string
}

// Error implements the error interface.
func (e *UnknownRelationshipError) Error() string {
	return fmt.Sprintf("resource '%s' doesn't have relationship '%s'",
		e.Resource, e.Relationship)
}

// PluralRelationshipError is returned when a plural relationship is
// assigned directly instead of through Add, Remove or Reset.
type PluralRelationshipError struct {
	Resource     string
	Relationship string
}

// Error implements the error interface.
func (e *PluralRelationshipError) Error() string {
	return fmt.Sprintf("cannot set the '%s' relationship of a '%s' resource "+
		"because it is plural; use Add, Remove or Reset instead",
		e.Relationship, e.Resource)
}
