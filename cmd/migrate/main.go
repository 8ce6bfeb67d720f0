// Command migrate applies the SQL files in migrations/ with goose.
//
//	go run ./cmd/migrate up        apply pending migrations
//	go run ./cmd/migrate down      roll back the latest one
//	go run ./cmd/migrate status    list applied and pending
//	go run ./cmd/migrate version   print the schema version
//
// Needs DATABASE_URL. The server also runs the in-code store migrations
// at startup, so this command is for operating a shared database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: migrate <up|down|status|version|redo|up-to N|down-to N>")
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := goose.RunContext(context.Background(), command, db, migrationsDir, args...); err != nil {
		log.Fatalf("migration %s: %v", command, err)
	}
}
