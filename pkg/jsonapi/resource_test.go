package jsonapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

func TestCollectionNew(t *testing.T) {
	t.Parallel()
	t.Run("constructs from named fields", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			ID:         "child_1",
			Attributes: map[string]interface{}{"name": "Hercules"},
		})
		require.NoError(t, err)

		assert.Equal(t, "children", child.Type())
		assert.Equal(t, "child_1", child.ID)
		assert.Equal(t, "Hercules", child.Attributes["name"])
	})

	t.Run("rejects a mismatched type tag", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		_, err := api.Type("children").New(jsonapi.ResourceParams{Type: "parents"})
		require.ErrorIs(t, err, jsonapi.ErrTypeMismatch)
	})

	t.Run("accepts a matching type tag", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		child, err := api.Type("children").New(jsonapi.ResourceParams{Type: "children"})
		require.NoError(t, err)
		assert.Equal(t, "children", child.Type())
	})

	t.Run("normalizes relationship values", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		parent := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "parents", ID: "parent_1"})

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			Relationships: map[string]interface{}{
				"parent":      parent,
				"grandparent": jsonapi.ResourceIdentifier{Type: "parents", ID: "parent_0"},
				"guardian":    nil,
			},
		})
		require.NoError(t, err)

		rel := child.Relationships["parent"]
		require.NotNil(t, rel)
		assert.Equal(t, jsonapi.ResourceIdentifier{Type: "parents", ID: "parent_1"}, *rel.Data)
		assert.Same(t, parent, child.Related("parent"))

		assert.Equal(t, "parent_0", child.Relationships["grandparent"].Data.ID)
		assert.Nil(t, child.Relationships["guardian"])
		assert.Nil(t, child.Related("guardian"))
	})
}

func TestFromJSON(t *testing.T) {
	t.Parallel()
	t.Run("envelope and bare object are equivalent", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		bare := `{
			"type": "children",
			"id": "child_1",
			"attributes": {"name": "Hercules"}
		}`

		fromEnvelope, err := api.Type("children").FromJSON([]byte(childWithRelationships))
		require.NoError(t, err)

		fromBare, err := api.Type("children").FromJSON([]byte(bare))
		require.NoError(t, err)

		assert.Equal(t, fromEnvelope.ID, fromBare.ID)
		assert.Equal(t, fromEnvelope.Attributes["name"], fromBare.Attributes["name"])
	})

	t.Run("rejects a mismatched type tag", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		_, err := api.Type("parents").FromJSON([]byte(childWithRelationships))
		require.ErrorIs(t, err, jsonapi.ErrTypeMismatch)
	})

	t.Run("rejects collection payloads", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		_, err := api.Type("children").FromJSON([]byte(`{"data": []}`))
		require.ErrorIs(t, err, jsonapi.ErrUnexpectedCollection)
	})

	t.Run("dispatches on the payload type tag", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, nil)

		child, err := api.ResourceFromJSON([]byte(childWithRelationships))
		require.NoError(t, err)
		assert.Equal(t, "children", child.Type())

		_, err = api.ResourceFromJSON([]byte(`{"id": "child_1"}`))
		require.ErrorIs(t, err, jsonapi.ErrMissingType)
	})
}

func TestResourceFields(t *testing.T) {
	t.Parallel()

	newChild := func(t *testing.T) *jsonapi.Resource {
		t.Helper()

		api, _ := newTestAPI(t, nil)

		child, err := api.Type("children").FromJSON([]byte(childWithRelationships))
		require.NoError(t, err)

		return child
	}

	t.Run("classifies fields", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		assert.Equal(t, jsonapi.FieldAttribute, child.Kind("name"))
		assert.Equal(t, jsonapi.FieldSingular, child.Kind("parent"))
		assert.Equal(t, jsonapi.FieldPlural, child.Kind("siblings"))
		assert.Equal(t, jsonapi.FieldUnknown, child.Kind("nope"))
	})

	t.Run("reads attributes and relationships", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		name, kind := child.Get("name")
		assert.Equal(t, jsonapi.FieldAttribute, kind)
		assert.Equal(t, "Hercules", name)

		parent, kind := child.Get("parent")
		assert.Equal(t, jsonapi.FieldSingular, kind)
		require.IsType(t, &jsonapi.Resource{}, parent)
		assert.Equal(t, "parent_1", parent.(*jsonapi.Resource).ID)

		siblings, kind := child.Get("siblings")
		assert.Equal(t, jsonapi.FieldPlural, kind)
		assert.Nil(t, siblings)
	})

	t.Run("writes attributes", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		require.NoError(t, child.Set("name", "Hera"))
		assert.Equal(t, "Hera", child.Attributes["name"])
	})

	t.Run("writes singular relationships", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		require.NoError(t, child.Set("parent", jsonapi.ResourceIdentifier{Type: "parents", ID: "parent_2"}))
		assert.Equal(t, "parent_2", child.Relationships["parent"].Data.ID)
		assert.Equal(t, "parent_2", child.Related("parent").ID)
	})

	t.Run("rejects plural assignment", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		err := child.Set("siblings", []interface{}{})

		pluralErr := &jsonapi.PluralRelationshipError{}
		require.ErrorAs(t, err, &pluralErr)
		assert.Equal(t, "siblings", pluralErr.Relationship)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		child := newChild(t)

		require.ErrorIs(t, child.Set("nope", 1), jsonapi.ErrUnknownField)
	})
}

func TestResourceMatches(t *testing.T) {
	t.Parallel()

	api, _ := newTestAPI(t, nil)

	child := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"})

	assert.True(t, child.Matches(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"}))
	assert.True(t, child.Matches(api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"})))
	assert.False(t, child.Matches(jsonapi.ResourceIdentifier{Type: "children", ID: "child_2"}))
	assert.False(t, child.Matches(jsonapi.ResourceIdentifier{Type: "parents", ID: "child_1"}))
	assert.False(t, child.Matches("child_1"))

	other := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"})
	assert.True(t, jsonapi.SameResource(child, other))
	assert.False(t, jsonapi.SameResource(child, nil))
}

func TestCollectionGet(t *testing.T) {
	t.Parallel()

	api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
		return jsonResponse(http.StatusOK, childWithRelationships)
	})

	child, err := api.Type("children").Get(context.Background(), "child_1")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	assert.Equal(t, http.MethodGet, transport.requests[0].Method)
	assert.Equal(t, "/children/child_1", transport.requests[0].URL)

	assert.Equal(t, "child_1", child.ID)
	assert.Equal(t, "Hercules", child.Attributes["name"])
}

func TestResourceReload(t *testing.T) {
	t.Parallel()
	t.Run("prefers the self link", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusOK, childWithRelationships)
		})

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			ID:    "child_1",
			Links: map[string]string{"self": "/custom/children/child_1"},
		})
		require.NoError(t, err)

		require.NoError(t, child.Reload(context.Background()))
		assert.Equal(t, "/custom/children/child_1", transport.requests[0].URL)
	})

	t.Run("passes include through", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusOK, childWithRelationships)
		})

		child := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"})
		require.NoError(t, child.Reload(context.Background(), "parent"))

		assert.Equal(t, "parent", transport.requests[0].Query.Get("include"))
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestResourceSave(t *testing.T) {
	t.Parallel()
	t.Run("creates when there is no id", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusCreated, `{
				"data": {
					"type": "children",
					"id": "child_9",
					"attributes": {"name": "Hercules", "created": "2024-01-01"}
				}
			}`)
		})

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			Attributes: map[string]interface{}{"name": "Hercules"},
		})
		require.NoError(t, err)

		require.NoError(t, child.Save(context.Background()))

		require.Len(t, transport.requests, 1)
		assert.Equal(t, http.MethodPost, transport.requests[0].Method)
		assert.Equal(t, "/children", transport.requests[0].URL)

		var payload map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(transport.requests[0].Body, &payload))
		assert.Equal(t, "children", payload["data"]["type"])
		assert.NotContains(t, payload["data"], "id")

		// The response overwrites local state
		assert.Equal(t, "child_9", child.ID)
		assert.Equal(t, "2024-01-01", child.Attributes["created"])
	})

	t.Run("updates editable fields by default", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusOK, `{
				"data": {"type": "children", "id": "child_1", "attributes": {"name": "Hera"}}
			}`)
		})

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			ID: "child_1",
			Attributes: map[string]interface{}{
				"name":   "Hera",
				"secret": "not for the wire",
			},
		})
		require.NoError(t, err)

		require.NoError(t, child.Save(context.Background()))

		assert.Equal(t, http.MethodPatch, transport.requests[0].Method)
		assert.Equal(t, "/children/child_1", transport.requests[0].URL)

		var payload struct {
			Data struct {
				Attributes map[string]interface{} `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(transport.requests[0].Body, &payload))
		assert.Equal(t, map[string]interface{}{"name": "Hera"}, payload.Data.Attributes)
	})

	t.Run("an explicit field list wins over the editable list", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusOK, `{
				"data": {"type": "children", "id": "child_1"}
			}`)
		})

		child, err := api.Type("children").New(jsonapi.ResourceParams{
			ID: "child_1",
			Attributes: map[string]interface{}{
				"name":   "Hera",
				"secret": "explicitly sent",
			},
		})
		require.NoError(t, err)

		require.NoError(t, child.Save(context.Background(), "secret"))

		var payload struct {
			Data struct {
				Attributes map[string]interface{} `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(transport.requests[0].Body, &payload))
		assert.Equal(t, map[string]interface{}{"secret": "explicitly sent"}, payload.Data.Attributes)
	})

	t.Run("without an editable list everything set is sent", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusOK, `{
				"data": {"type": "parents", "id": "parent_1"}
			}`)
		})

		parent, err := api.Type("parents").New(jsonapi.ResourceParams{
			ID: "parent_1",
			Attributes: map[string]interface{}{
				"name": "Zeus",
				"age":  float64(4000),
			},
		})
		require.NoError(t, err)

		require.NoError(t, parent.Save(context.Background()))

		var payload struct {
			Data struct {
				Attributes map[string]interface{} `json:"attributes"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(transport.requests[0].Body, &payload))
		assert.Len(t, payload.Data.Attributes, 2)
	})
}

func TestCollectionCreate(t *testing.T) {
	t.Parallel()
	t.Run("creates and returns the saved resource", func(t *testing.T) {
		t.Parallel()

		api, _ := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
			return jsonResponse(http.StatusCreated, `{
				"data": {"type": "children", "id": "child_9", "attributes": {"name": "Hercules"}}
			}`)
		})

		child, err := api.Type("children").Create(context.Background(), jsonapi.ResourceParams{
			Attributes: map[string]interface{}{"name": "Hercules"},
		})
		require.NoError(t, err)
		assert.Equal(t, "child_9", child.ID)
	})

	t.Run("rejects client-generated ids", func(t *testing.T) {
		t.Parallel()

		api, transport := newTestAPI(t, nil)

		_, err := api.Type("children").Create(context.Background(), jsonapi.ResourceParams{
			ID: "child_1",
		})
		require.ErrorIs(t, err, jsonapi.ErrIDSupplied)
		assert.Empty(t, transport.requests)
	})
}

func TestResourceDelete(t *testing.T) {
	t.Parallel()

	api, transport := newTestAPI(t, func(req *jsonapi.Request) (*jsonapi.Response, error) {
		return jsonResponse(http.StatusNoContent, "")
	})

	child := api.FromIdentifier(jsonapi.ResourceIdentifier{Type: "children", ID: "child_1"})
	require.NoError(t, child.Delete(context.Background()))

	assert.Equal(t, http.MethodDelete, transport.requests[0].Method)
	assert.Equal(t, "/children/child_1", transport.requests[0].URL)
	assert.Empty(t, child.ID)
}
