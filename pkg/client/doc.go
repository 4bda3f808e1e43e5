// Package client provides the primary entry point for constructing a
// JSON:API client handle.
//
// It layers configuration and HTTP transport on top of the resource model
// defined in the jsonapi package. Most applications should import client to
// build a handle, register the resource types they work with, then use the
// returned jsonapi.API to fetch, edit and save resources.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/dbendilas/jsonapi/pkg/client"
//	  "github.com/dbendilas/jsonapi/pkg/jsonapi"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  api, err := client.New(&client.Config{
//	    Endpoint: "https://rest.api.example.com",
//	    Token:    "eyJhbGciOi...", // bearer token
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  api.Register(jsonapi.Type{Name: "children", Editable: []string{"name"}})
//
//	  child, err := api.Type("children").Get(ctx, "child_1")
//	  if err != nil { log.Fatal(err) }
//	  _ = child
//	}
//
// # Helpers
//
// The package also provides convenience constructors NewWithEndpoint and
// NewWithToken that wrap New with the appropriate configuration.
package client
