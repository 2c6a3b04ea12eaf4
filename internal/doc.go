// Package internal holds the parts of goHash that are not public API.
//
// # Sub-packages
//
//   - admission: memory-weighted admission budgets, local and Redis-backed
//   - security: grading of hashing parameters against published baselines
//   - server: HTTP routing, request decoding and error mapping for hashd
//
// # What this package must NOT do
//
//   - Export types that appear in the public goHash API, except through aliases.
//   - Be imported by any package outside the goHash module.
package internal
