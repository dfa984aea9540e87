// Package http exposes the publish lifecycle over a chi router.
//
// Routes mount under /admin/api by default:
//   - Items: GET /items/{id}, POST /items/{id}/transition
//   - Invariants: GET /items/{kind}/audit, POST /items/{kind}/repair
//   - Schedule: POST /schedule/sweep
//   - Bulk: POST /bulk
//
// GET /metrics is mounted at the router root when a prometheus registry is
// configured. Request bodies are checked against the embedded JSON schemas
// before they are decoded.
package http
