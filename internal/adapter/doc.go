// Package adapter implements the persistence strategies behind the
// collection store.
//
// A strategy is picked once per deployment from configuration:
//
//   - remote issues one REST call per mutation (POST, PUT or DELETE by id)
//   - bulk posts the whole collection on every mutation
//   - local keeps each collection as one JSON document in a SQLite key/value
//     cache and falls back to the bundled dataset when nothing usable is saved
//   - none keeps the bundled dataset in memory and persists nothing
//
// Every adapter validates outgoing records and incoming responses against the
// entity schema, so a malformed record fails its mutation and the store
// reverts it.
package adapter
