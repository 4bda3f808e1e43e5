package jsonapi_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// mockTransport records every request and answers through a
// test-provided handler.
type mockTransport struct {
	t        *testing.T
	handler  func(req *jsonapi.Request) (*jsonapi.Response, error)
	requests []*jsonapi.Request
}

func (m *mockTransport) Execute(_ context.Context, req *jsonapi.Request) (*jsonapi.Response, error) {
	m.requests = append(m.requests, req)

	if m.handler == nil {
		m.t.Errorf("unexpected request: %s %s", req.Method, req.URL)

		return nil, fmt.Errorf("unexpected request: %s %s", req.Method, req.URL)
	}

	return m.handler(req)
}

func jsonResponse(statusCode int, body string) (*jsonapi.Response, error) {
	return &jsonapi.Response{StatusCode: statusCode, Body: []byte(body)}, nil
}

// newTestAPI builds a handle over a mockTransport with the test resource
// types registered.
func newTestAPI(t *testing.T, handler func(req *jsonapi.Request) (*jsonapi.Response, error)) (*jsonapi.API, *mockTransport) {
	t.Helper()

	transport := &mockTransport{t: t, handler: handler}

	api, err := jsonapi.New(transport)
	if err != nil {
		t.Fatalf("creating API: %v", err)
	}

	api.Register(
		jsonapi.Type{Name: "children", Editable: []string{"name"}},
		jsonapi.Type{Name: "parents"},
	)

	return api, transport
}

const childWithRelationships = `{
	"data": {
		"type": "children",
		"id": "child_1",
		"attributes": {"name": "Hercules"},
		"relationships": {
			"parent": {
				"data": {"type": "parents", "id": "parent_1"},
				"links": {
					"self": "/children/child_1/relationships/parent",
					"related": "/parents/parent_1"
				}
			},
			"siblings": {
				"links": {
					"self": "/children/child_1/relationships/siblings",
					"related": "/children?filter[sibling_of]=child_1"
				}
			}
		},
		"links": {"self": "/children/child_1"}
	}
}`
