// Package config provides configuration management for inscricao.
//
// Configuration is read once at startup into an immutable Config which is
// then handed to every component that needs it.
//
// # Configuration Sources
//
// Configuration is loaded from:
//
//   - Configuration file: $INSCRICAO_CONFIG_PATH/inscricao.yml (optional)
//   - Environment variables (take precedence)
//
// # Key Configuration Options
//
//   - INSCRICAO_CONSUMER_KEY / INSCRICAO_CONSUMER_SECRET: OAuth consumer
//   - INSCRICAO_DATA_KEY: Encryption key
//   - DATABASE_URL: Database connection
//   - INSCRICAO_REFERENCE_DATABASE_URL / INSCRICAO_USERS_DATABASE_URL: per-store overrides
//   - INSCRICAO_SUPPORT_EMAIL: Contact shown on errors
//   - INSCRICAO_AUDIT_ENABLED / AUDIT_DATABASE_URL: Audit log output
package config
