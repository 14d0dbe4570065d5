// cmd/ddlgen prints the Postgres DDL for the order reporting mirror.
//
//	go run ./cmd/ddlgen > schema.sql
package main

import (
	"fmt"

	"emporia/internal/adapters/out/db"
)

func main() {
	fmt.Println(db.OrderExportDDL)
}
