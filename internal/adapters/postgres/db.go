package postgres

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func logDB(ctx context.Context, msg, operation, outcome string, attrs ...any) {
	base := []any{
		"module", "postgres",
		"layer", "adapter",
		"operation", operation,
		"outcome", outcome,
	}
	slog.Default().InfoContext(ctx, msg, append(base, attrs...)...)
}

// Connect opens a GORM pool against Postgres and pings it before returning.
// TranslateError is required: repositories rely on gorm.ErrDuplicatedKey and
// gorm.ErrForeignKeyViolated to detect constraint violations.
func Connect(ctx context.Context, databaseURL string, maxConns int) (*gorm.DB, error) {
	logDB(ctx, "postgres connect started", "connect", "start")
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns / 2)
	}
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	logDB(ctx, "postgres connect completed", "connect", "success")
	return db, nil
}

// RunMigrations applies the embedded schema files in lexical order.
// Every statement is idempotent, so reruns on an up-to-date database are no-ops.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	logDB(ctx, "postgres migrations started", "run_migrations", "start", "migration_count", len(names))

	for _, name := range names {
		raw, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(raw)) {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				return fmt.Errorf("exec migration %s: %w", name, err)
			}
		}
		logDB(ctx, "migration applied", "apply_migration", "success", "migration", name)
	}
	logDB(ctx, "postgres migrations completed", "run_migrations", "success", "migration_count", len(names))
	return nil
}

// splitStatements breaks a migration file into single statements.
// Prepared statements reject multi-command strings.
func splitStatements(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
