// Package cli implements the clubdata command tree: serve, browse, list,
// add, update, delete and migrate. Commands read the shared config and hand
// off to package app.
package cli
