// Package migrations embeds the schema for the system tables the API owns.
// Snapshot tables (Contratos, Contas_a_Receber, ...) are created by the offline loader.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
