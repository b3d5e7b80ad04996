// Package query implements the lazy, chainable query builder.
//
// A Builder accumulates filter, projection, ordering and write operations
// against one logical table; Compile serializes the accumulated state into
// the request envelope and Execute sends it through the pipeline. State
// accumulates synchronously during chaining, and every Execute recompiles
// and re-sends; there is no memoization, so executing one builder twice
// issues two network requests.
package query
