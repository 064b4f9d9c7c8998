// Package adapters provide database adapter implementations for the PostgreSQL user/book store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the store to work with any supported connection type.
//
// Every adapter can begin a transaction; the returned DBTx executes statements on the
// transaction's connection until it is committed or rolled back. Reads outside a transaction
// are routed to an optional replica when the context asks for eventual consistency.
package adapters
