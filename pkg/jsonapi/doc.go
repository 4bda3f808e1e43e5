// Package jsonapi provides a client-side mapping layer for JSON:API
// servers: declare lightweight resource types, then create, read, update,
// delete and traverse relationships between remote resources without
// hand-writing wire-level translation per type.
//
// # Overview
//
// The package defines the entity model (Resource), the lazy pagination
// cursor (Queryset), the relationship descriptor codec (Relationship) and
// the type registry. A concrete Transport implementation is provided by
// the client package, which wires configuration, retries and
// authentication. Most consumers should import client to construct an API
// handle and interact with the surfaces exposed here.
//
// Getting started
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
//	  api, err := client.New(&client.Config{Endpoint: "https://api.example.com", Token: "SECRET"})
//	  if err != nil { log.Fatal(err) }
//
//	  api.Register(jsonapi.Type{Name: "projects", Editable: []string{"name"}})
//
//	  project, err := api.Type("projects").Get(ctx, "1", "organization")
//	  if err != nil { log.Fatal(err) }
//
//	  _ = project.Related("organization")
//	}
//
// # Collections and pagination
//
// Collection listing returns a lazy Queryset: nothing is fetched until the
// first access, and adjacent pages are reached through Next and Previous
// or walked in bulk:
//
//	people := api.Type("people").Filter("age[gt]", 28).Include("parent")
//	err := people.ForEach(ctx, func(person *jsonapi.Resource) error {
//	  _ = person.Attributes["name"]
//	  return nil
//	})
//
// # Errors
//
// Failed requests are represented by ResponseError carrying the HTTP
// status and the server's errors array. Helpers such as IsNotFound,
// IsUnauthorized and IsForbidden make it easy to branch on common cases.
// Validation failures use typed errors (UnknownRelationshipError,
// PluralRelationshipError) and package-level sentinels.
package jsonapi
