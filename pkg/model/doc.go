// Package model defines the database rows for inscricao.
//
// These are GORM models that map one-to-one to the tables created by the
// migrations in db/migrations. Rows are storage-shaped: encrypted columns
// hold ciphertext, and conversion to the plaintext types in
// pkg/server/store happens inside the store implementations.
//
// # Tables
//
//   - cities: reference data, one row per municipality
//   - schools: reference data, each row belongs to a city
//   - users: one registration per identity, with encrypted name and school
package model
