// Package config provides the PostgreSQL connection configuration of the userbooks store.
//
// It resolves the primary and replica DSNs (overridable through the environment) and creates
// connection pools for the three supported adapters (pgx.Pool, sql.DB, sqlx.DB) with the
// pool settings the store is tuned for.
package config
