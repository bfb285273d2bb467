package db

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// RunMigrations applies the SQL migrations once and returns, for the one-shot
// `-migrate` invocation of cmd/server. Unlike ConnectAndMigrate it never falls
// back to AutoMigrate, so it requires a postgres DSN.
func RunMigrations() error {
	dsn := GetNormalizedDSN()
	if !IsPostgresDSN(dsn) {
		return fmt.Errorf("sql migrations need a postgres DATABASE_DSN, got %q", maskDSN(dsn))
	}
	logrus.WithField("dsn", maskDSN(dsn)).Info("applying sql migrations")
	return runSQLMigrations(ToURLDSN(dsn))
}
