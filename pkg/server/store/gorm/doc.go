// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// This package contains concrete implementations that use GORM for database
// operations. The interfaces they implement are defined in pkg/server/store.
//
// RegistrationStore is the encryption boundary for the users table: names
// and schools are encrypted before every write and every equality lookup,
// and decrypted on read. The cipher it is given must be deterministic so
// that the unique index on users.name holds across rows.
package gorm
