// migrate-to-postgres copies stored rosters from SQLite to PostgreSQL.
//
// Usage:
//
//	go run ./cmd/migrate-to-postgres \
//	    -sqlite data/rosters.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user rosterforge \
//	    -pg-password rosterforge \
//	    -pg-database rosterforge
package main

import (
	"errors"
	"flag"
	"log"
	"time"

	"github.com/lawnchairsociety/rosterforge/server/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/rosters.db", "Path to SQLite database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "rosterforge", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "rosterforge", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "rosterforge", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	includeExpired := flag.Bool("include-expired", false, "Also copy rosters whose code has expired")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("SQLite to PostgreSQL Roster Migration")
	log.Println("=====================================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	rosters, err := src.ListRosters()
	if err != nil {
		log.Fatalf("Failed to read rosters: %v", err)
	}
	log.Printf("Found %d stored rosters", len(rosters))

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	pg := database.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	var dst *database.Database
	if !*dryRun {
		log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
		dst, err = database.OpenWithConfig(database.Config{Driver: string(database.DialectPostgres), Postgres: pg})
		if err != nil {
			log.Fatalf("Failed to open PostgreSQL database: %v", err)
		}
		defer dst.Close()
	}

	now := time.Now()
	var copied, skipped, existing int
	for _, r := range rosters {
		if !*includeExpired && !r.ExpiresAt.After(now) {
			skipped++
			continue
		}
		if *dryRun {
			copied++
			continue
		}
		err := dst.ImportRoster(r)
		if errors.Is(err, database.ErrCodeTaken) {
			existing++
			continue
		}
		if err != nil {
			log.Fatalf("Failed to copy roster %s: %v", r.Code, err)
		}
		copied++
	}

	log.Println("=====================================")
	log.Printf("Migration complete! Copied %d, skipped %d expired, %d already present", copied, skipped, existing)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
