// Package contract compiles declarative API contracts into immutable schemas
// and dispatch wrappers. Declarations are order-preserving YAML documents
// attached to plain Go functions; the compiler turns them into validation
// schemas, derives documentation, classifies handler parameters, and builds a
// reflection-based dispatch routine that extracts and validates arguments from
// a generic JSON value bag before invoking the real handler.
//
// A method declaration names an input object schema, an optional return
// schema, and a protected flag:
//
//	m, err := contract.CompileMethod(contract.MethodSpec{
//	    Name: "create_ticket",
//	    Doc:  "Create or verify authentication ticket.\n\nReturns: the new ticket.",
//	    Declaration: []byte(`
//	input:
//	  type: Object
//	  properties:
//	    username:
//	      type: String
//	      description: User name
//	      max_length: 64
//	    password:
//	      type: String
//	      description: The secret password or a valid ticket.
//	returns:
//	  type: String
//	`),
//	    Handler: createTicket,
//	    Params:  []string{"username", "password"},
//	})
//
// Handler parameters are classified by name against the input schema; the
// marker types *Method, Environment, and Value bind the ambient method
// descriptor, the runtime environment, and the leftover value bag.
//
// All compilation happens once at process initialization. Named schemas and
// string formats live in a Registry with an explicit build-then-publish
// barrier; after Publish everything is read-only and safe for concurrent
// dispatch.
package contract
