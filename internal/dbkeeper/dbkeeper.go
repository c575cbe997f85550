package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/drstein77/batterycatalog/internal/catalog"
	"github.com/drstein77/batterycatalog/internal/models"
	"github.com/drstein77/batterycatalog/internal/storage"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// DBKeeper stores contact messages and the imported catalog in PostgreSQL.
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to the database and applies the migrations found in migrationsDir.
// It returns nil when the DSN is empty or the database cannot be prepared.
func NewDBKeeper(ctx context.Context, dsn func() string, migrationsDir string, log Log) *DBKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty, contact messages are kept in memory")
		return nil
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		log.Error("Unable to parse database DSN: ", zap.Error(err))
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Unable to connect to database: ", zap.Error(err))
		return nil
	}

	if err := migrateUp(config.ConnConfig, migrationsDir); err != nil {
		log.Error("Error while performing migration: ", zap.Error(err))
		pool.Close()
		return nil
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}
}

func migrateUp(connConfig *pgx.ConnConfig, dir string) error {
	path, err := migrationsPath(dir)
	if err != nil {
		return err
	}

	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("error getting driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrationsPath resolves dir against the working directory, falling back to the
// repository root when the binary runs from cmd/catalog.
func migrationsPath(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current directory: %w", err)
	}
	for _, candidate := range []string{
		filepath.Join(cwd, dir),
		filepath.Join(cwd, "..", "..", dir),
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("migrations directory %q not found", dir)
}

// InsertContactMessage stores a message and returns its id.
func (kp *DBKeeper) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) (int64, error) {
	if kp.pool == nil {
		return 0, fmt.Errorf("database connection pool is nil")
	}

	const stmt = `
		INSERT INTO contact_messages (nombre, email, telefono, asunto, mensaje, ip_address, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := kp.pool.QueryRow(ctx, stmt,
		msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, msg.IPAddress, msg.IsRead, msg.CreatedAt,
	).Scan(&id)
	if err != nil {
		kp.log.Error("Failed to insert contact message", zap.Error(err))
		return 0, fmt.Errorf("failed to insert contact message: %w", err)
	}
	return id, nil
}

// ListContactMessages returns messages newest first.
func (kp *DBKeeper) ListContactMessages(ctx context.Context, q models.MessageQuery) ([]models.ContactMessage, error) {
	// Checking database connection
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	query := `
		SELECT id, nombre, email, COALESCE(telefono, ''), asunto, mensaje, ip_address, is_read, created_at
		FROM contact_messages
		WHERE ($1 = FALSE OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	// Executing the query
	rows, err := kp.pool.Query(ctx, query, q.UnreadOnly, q.Limit, q.Offset)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	// Reading data
	messages := make([]models.ContactMessage, 0, q.Limit)
	for rows.Next() {
		var m models.ContactMessage
		err := rows.Scan(
			&m.ID,
			&m.Name,
			&m.Email,
			&m.Phone,
			&m.Subject,
			&m.Message,
			&m.IPAddress,
			&m.IsRead,
			&m.CreatedAt,
		)
		if err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		messages = append(messages, m)
	}

	// Checking for errors during iteration
	if rows.Err() != nil {
		kp.log.Error("Error occurred during rows iteration", zap.Error(rows.Err()))
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}

	return messages, nil
}

// MarkContactMessageRead flags a message as read. Unknown ids yield storage.ErrNotFound.
func (kp *DBKeeper) MarkContactMessageRead(ctx context.Context, id int64) error {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tag, err := kp.pool.Exec(ctx, `UPDATE contact_messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		kp.log.Error("Failed to mark message as read", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark message %d as read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SaveCatalogFiles replaces the stored catalog files in one transaction.
func (kp *DBKeeper) SaveCatalogFiles(ctx context.Context, files []catalog.File) (err error) {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		kp.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	importedAt := time.Now()
	stmt := `INSERT INTO catalog_files (position, name, data, imported_at) VALUES ($1, $2, $3, $4)`
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM catalog_files`)
	for i, f := range files {
		batch.Queue(stmt, i, f.Name, f.Data, importedAt)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, execErr := br.Exec(); execErr != nil {
			br.Close()
			err = fmt.Errorf("failed to execute batch query: %w", execErr)
			return err
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		err = fmt.Errorf("failed to close batch: %w", closeErr)
		return err
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		return err
	}

	kp.log.Info("Catalog files saved", zap.Int("files", len(files)))
	return nil
}

// LoadCatalogFiles returns the files of the last saved import in upload order.
// It returns no files when nothing has been imported.
func (kp *DBKeeper) LoadCatalogFiles(ctx context.Context) ([]catalog.File, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	rows, err := kp.pool.Query(ctx, `SELECT name, data FROM catalog_files ORDER BY position`)
	if err != nil {
		kp.log.Error("Failed to execute query", zap.Error(err))
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var files []catalog.File
	for rows.Next() {
		var f catalog.File
		if err := rows.Scan(&f.Name, &f.Data); err != nil {
			kp.log.Error("Failed to scan row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		files = append(files, f)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", rows.Err())
	}
	return files, nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
