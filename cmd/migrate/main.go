// Aplicador de migraciones: recorre migrations/*.sql en orden, registra cada
// versión con su checksum en schema_migrations y toma un advisory lock para
// que dos instancias no migren a la vez.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/farmacore-api/pkg/config"
	"github.com/tu-usuario/farmacore-api/pkg/logger"
)

const advisoryLockKey = 4217350

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("adquirir conexión para el lock")
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", advisoryLockKey).Scan(&locked); err != nil {
		log.Fatal().Err(err).Msg("consultar advisory lock")
	}
	if !locked {
		log.Fatal().Msg("otro migrador está corriendo")
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatal().Err(err).Msg("crear schema_migrations")
	}

	files, err := discoverMigrations()
	if err != nil {
		log.Fatal().Err(err).Msg("descubrir migraciones")
	}
	for _, filename := range files {
		if err := applyMigration(ctx, pool, filename, log); err != nil {
			log.Fatal().Err(err).Str("file", filename).Msg("aplicar migración")
		}
	}
	log.Info().Int("count", len(files)).Msg("migraciones al día")
}

func discoverMigrations() ([]string, error) {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, errors.New("nombre inválido, se espera NNN_descripcion.sql: " + entry.Name())
		}
		if seen[version] {
			return nil, errors.New("versión duplicada: " + version)
		}
		seen[version] = true
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, filename string, log *logger.Logger) error {
	version, _, _ := strings.Cut(filename, "_")

	sqlBytes, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		return err
	}
	hash := sha256.Sum256(sqlBytes)
	checksum := hex.EncodeToString(hash[:])

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return errors.New("checksum no coincide para " + filename + "; la migración fue editada después de aplicarse")
		}
		log.Debug().Str("file", filename).Msg("migración ya aplicada")
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		// pendiente, aplicar
	default:
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		version, filename, checksum); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Info().Str("file", filename).Msg("migración aplicada")
	return nil
}
