// Package admission bounds the memory committed to concurrent KDF invocations.
//
// Every request reserves its memory cost (in KiB) before the arena is allocated
// and releases it on every exit path.
//
// # Budgets
//
//   - Local: a weighted semaphore sized to the process budget. Callers may wait
//     up to Config.Wait for capacity.
//   - Cluster (optional): a Redis sorted set of leases shared by all replicas.
//     Each reservation adds one member scored by its expiry. A Lua script drops
//     expired members and checks the sum atomically. Release removes the member.
//     Leases of a crashed replica expire on their own. Key prefix: adm:
//
// # What this package must NOT do
//
//   - Know about password hashing, encodings or HTTP.
//   - Be imported outside the goHash module.
package admission
