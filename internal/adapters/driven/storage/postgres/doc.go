// Package postgres provides a PostgreSQL implementation of the document and
// page store ports, for deployments that share one library between several
// pagesmith processes.
//
// It is selected with storage.driver = "postgres" and storage.dsn. The schema
// in schema.sql is applied idempotently when the store opens.
package postgres
