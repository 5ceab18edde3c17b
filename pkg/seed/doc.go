// Package seed parses and loads the reference data file.
//
// Cities and schools are read-only at runtime; they are maintained in a YAML
// file and pushed to the database with "inscricaoctl seed load" (or kept in
// sync with "inscricaoctl seed watch").
//
// # File Format
//
//	cities:
//	  - id: 1
//	    name: Salvador
//	    state: BA
//	schools:
//	  - id: 10
//	    name: Escola Estadual A
//	    city: 1
//
// Loading is an upsert by id: existing rows are overwritten, nothing is
// deleted.
package seed
