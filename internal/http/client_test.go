package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/dbendilas/jsonapi/internal/http"
	"github.com/dbendilas/jsonapi/pkg/jsonapi"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Execute(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/children/child_1", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Accept"))

			response := map[string]interface{}{
				"data": map[string]interface{}{"type": "children", "id": "child_1"},
			}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, apihttp.StaticToken("test-token"))

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "GET",
			URL:    "/children/child_1",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]interface{}

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Contains(t, result, "data")
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/children", request.URL.Path)
			assert.Equal(t, "a", request.URL.Query().Get("filter[name]"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "GET",
			URL:    "/children",
			Query:  url.Values{"filter[name]": []string{"a"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("absolute pagination link bypasses base URL", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/children", request.URL.Path)
			assert.Equal(t, "2", request.URL.Query().Get("page"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient("https://unreachable.example.com", nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "GET",
			URL:    server.URL + "/children?page=2",
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/vnd.api+json", request.Header.Get("Content-Type"))

			var body map[string]interface{}

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Contains(t, body, "data")

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "POST",
			URL:    "/children",
			Body:   []byte(`{"data": {"type": "children"}}`),
		})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("bulk request content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, `application/vnd.api+json;profile="bulk"`, request.Header.Get("Content-Type"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "POST",
			URL:    "/children",
			Body:   []byte(`{"data": []}`),
			Bulk:   true,
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)

			response := jsonapi.ResponseError{
				Errors: []jsonapi.APIError{
					{
						Status: "404",
						Code:   "not_found",
						Title:  "Not Found",
						Detail: "Child not found",
					},
				},
			}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "GET",
			URL:    "/children/missing",
		})
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		errResp := &jsonapi.ResponseError{}
		ok := errors.As(err, &errResp)
		require.True(t, ok)
		assert.Len(t, errResp.Errors, 1)
		assert.Equal(t, "not_found", errResp.Errors[0].Code)
		assert.True(t, jsonapi.IsNotFound(err))
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil)

		resp, err := client.Execute(context.Background(), &jsonapi.Request{
			Method:  "GET",
			URL:     "/children",
			Headers: http.Header{"X-Custom-Header": []string{"custom-value"}},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{"data": nil})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := apihttp.NewClient(server.URL, nil, apihttp.WithLogger(logger), apihttp.WithDebug(true))

		_, err := client.Execute(context.Background(), &jsonapi.Request{
			Method: "GET",
			URL:    "/children",
		})
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "API Request", logger.logs[0]["msg"])
		assert.Equal(t, "API Response", logger.logs[1]["msg"])
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil,
			apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Execute(context.Background(), &jsonapi.Request{Method: "GET", URL: "/children"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 3, attempts)
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++
			if attempts < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil,
			apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Execute(context.Background(), &jsonapi.Request{Method: "GET", URL: "/children"})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 2, attempts)
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		attempts := 0

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts++

			writer.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client := apihttp.NewClient(server.URL, nil,
			apihttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Execute(context.Background(), &jsonapi.Request{Method: "GET", URL: "/children"})
		require.Error(t, err)
		assert.Equal(t, 400, resp.StatusCode)
		assert.Equal(t, 1, attempts) // Should not retry
	})
}
