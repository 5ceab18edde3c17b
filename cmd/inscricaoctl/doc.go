// Command inscricaoctl runs the school registration web application and its
// maintenance tasks.
//
// Users log in with their Wikiversity account (MediaWiki OAuth1), pick a
// city and a school, and consent to the terms. Their username and school are
// stored encrypted.
//
// # Quick Start
//
//	# Generate a data key for encryption
//	inscricaoctl data-key generate > data_key
//	export INSCRICAO_DATA_KEY=$(cat data_key)
//
//	# Run database migrations
//	export DATABASE_URL=postgres://localhost/inscricao
//	inscricaoctl db migrate
//
//	# Load the cities and schools
//	inscricaoctl seed load escolas.yml
//
//	# Start the server
//	export INSCRICAO_CONSUMER_KEY=... INSCRICAO_CONSUMER_SECRET=...
//	inscricaoctl server
//
// # Commands
//
//   - server: run the HTTP server
//   - db migrate|down|status: manage the schema
//   - data-key generate: print a new data key
//   - configuration show: print the effective configuration
//   - seed load|watch: load cities and schools from YAML
//   - audit recent: print persisted audit events
//   - wait: block until the server answers /status
package main
