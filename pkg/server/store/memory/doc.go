// Package memory provides in-process implementations of the store
// interfaces. They are safe for concurrent use and keep the same
// ordering and uniqueness guarantees as the database-backed stores.
package memory
