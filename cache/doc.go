// Package cache provides memoization backends for the endpoint parser.
//
// Two implementations of endpoint.Cache are included:
//
//   - LRU: an in-process cache with exact least-recently-used eviction and a
//     fixed capacity set at construction. This is the default choice; tests
//     construct a fresh instance per case to verify eviction deterministically.
//   - Redis: a shared cache for deployments where several review sessions
//     parse the same scan data. Entries are stored as JSON under hashed keys
//     with a configurable TTL.
//
// Both implementations are safe for concurrent use. Racing writes for the
// same key are harmless: parses of identical text are idempotent, so
// last-writer-wins never produces an inconsistent cached value.
package cache
