//go:build integration

package testutil

import (
	"log"
	"os"

	pgrepo "github.com/Gunvolt24/salesops/internal/repo/postgres"
	"github.com/Gunvolt24/salesops/migrations"
	"github.com/pressly/goose/v3"
)

// ApplyMigrationsGoose — применяет встроенные миграции (migrations.FS) к базе dsn.
func ApplyMigrationsGoose(dsn string) error {
	goose.SetLogger(log.New(os.Stdout, "", 0))
	return pgrepo.Migrate(dsn, migrations.FS)
}
