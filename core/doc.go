// Package core contains the canonical resource dispatch contracts, entities,
// and orchestration logic: the registry of exported resource types, the
// access-control evaluator, the argument binder, the access-aware encoder,
// and the dispatch service that ties them together. Transport and storage
// adapters must depend on this package; core must not depend on them.
package core
