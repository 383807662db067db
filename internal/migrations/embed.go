// Package migrations embeds the goose migration set that creates the
// catalog tables sql/authgateway, sql/principal, and sql/catalog assume
// already exist (spec.md §6), grounded on
// Yacobolo-ducklake-dataplatform's internal/db package, which embeds its
// own goose migration set the same way.
package migrations

import "embed"

// FS contains the embedded SQL migration files applied by Run.
//
//go:embed *.sql
var FS embed.FS
