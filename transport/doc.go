// Package transport exposes the dispatch operations over JSON HTTP.
//
// The handler is a thin surface: it decodes batch payloads, resolves the
// caller environment, and delegates to the dispatch service. All access
// decisions stay inside the engine.
package transport
