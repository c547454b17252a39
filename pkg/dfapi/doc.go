// Package dfapi provides types, interfaces, and helpers for working with the
// DreamFactory /rest/system administrative API.
//
// # Overview
//
// The dfapi package defines the record types (App, Role, User, Service, ...),
// the Query used to filter and project list calls, a Codec per record kind
// that knows its path, relations and wire names, and the client interfaces.
// A concrete implementation is provided by the dfclient package, which wires
// configuration, transport and session handling.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dfapi/pkg/dfapi"
//	  "github.com/fivetwenty-io/dfapi/pkg/dfclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := dfclient.New(ctx, &dfapi.Config{
//	    BaseURL:  "https://df.example.com",
//	    AppName:  "admin",
//	    Email:    "admin@example.com",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  roles, err := cli.Roles().List(ctx, dfapi.NewQuery().
//	    WithFilter("is_active=true").
//	    WithRelated(dfapi.RelatedUsers))
//	  if err != nil { log.Fatal(err) }
//	  _ = roles
//	}
//
// # Optional fields
//
// Every record field is a pointer or a slice. A nil pointer means the server
// did not send the field. For related lists, nil means the relation was not
// requested and an empty slice means it was requested and is empty. Int,
// Bool and String build pointers for request records.
//
// # Batches
//
// Create and Update always send {"record": [...]} and return the records in
// request order. Calling them with no records returns immediately without a
// request. Use Zip to pair request and response records.
//
// # Errors
//
// Any response with a status of 400 or above yields a *ResponseError. Helpers
// such as IsNotFound, IsUnauthorized and IsForbidden branch on common cases.
// Invalid input such as a negative limit is reported before any request.
//
// # Interceptors
//
// Request/response interceptors cover logging, headers, rate limiting,
// Prometheus metrics, circuit breaking and publishing audit records to NATS.
// Pass them through Config.Interceptors.
package dfapi
