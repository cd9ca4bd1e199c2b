/*
Package sqlite implementa los puertos de persistencia sobre SQLite (despliegue de un solo nodo).

Se abre con _txlock=immediate: cada transacción toma el lock de escritura al iniciar, por lo que
los lotes quedan serializados y GetForUpdate no necesita FOR UPDATE. Los decimales se guardan
como TEXT para no perder precisión; las fechas como TEXT UTC de ancho fijo para que el orden
lexicográfico coincida con el cronológico.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/internal/domain/entity"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// querier subconjunto común de *sql.DB y *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store conexión SQLite con el esquema migrado.
type Store struct {
	db *sql.DB
}

// New abre (o crea) la base en path. Usar ":memory:" para una base efímera.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if path == ":memory:" {
		// Cada conexión a :memory: es una base distinta.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrar sqlite: %w", err)
	}
	return s, nil
}

// Close cierra la conexión.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifica la conexión (health check).
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo {
	return &ProductRepo{q: s.db}
}

// Transactions repositorio de movimientos fuera de transacción.
func (s *Store) Transactions() *TransactionRepo {
	return &TransactionRepo{q: s.db}
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL,
		specification TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL,
		min_stock TEXT NOT NULL,
		current_stock TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		average_price TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS products_code_key ON products(code);
	-- lower() de SQLite solo pliega ASCII: la clave se calcula en Go (entity.NameKey).
	CREATE UNIQUE INDEX IF NOT EXISTS products_name_key_idx ON products(name_key);

	-- Libro append-only
	CREATE TABLE IF NOT EXISTS transactions (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL CHECK (type IN ('receipt', 'issue', 'return')),
		date TEXT NOT NULL,
		vendor TEXT NOT NULL DEFAULT '',
		invoice_number TEXT NOT NULL DEFAULT '',
		requester TEXT NOT NULL DEFAULT '',
		sector TEXT NOT NULL DEFAULT '',
		project_destination TEXT NOT NULL DEFAULT '',
		destination TEXT NOT NULL DEFAULT '',
		signature TEXT NOT NULL DEFAULT '',
		accepted INTEGER NOT NULL DEFAULT 0,
		total_value TEXT NOT NULL,
		created_by TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_type_date ON transactions(type, date);

	CREATE TABLE IF NOT EXISTS transaction_items (
		transaction_id TEXT NOT NULL REFERENCES transactions(id),
		line_no INTEGER NOT NULL,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		product_specification TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		total_price TEXT NOT NULL,
		PRIMARY KEY (transaction_id, line_no)
	);

	CREATE TRIGGER IF NOT EXISTS transactions_no_update BEFORE UPDATE ON transactions
	BEGIN SELECT RAISE(ABORT, 'append-only'); END;
	CREATE TRIGGER IF NOT EXISTS transactions_no_delete BEFORE DELETE ON transactions
	BEGIN SELECT RAISE(ABORT, 'append-only'); END;
	CREATE TRIGGER IF NOT EXISTS transaction_items_no_update BEFORE UPDATE ON transaction_items
	BEGIN SELECT RAISE(ABORT, 'append-only'); END;
	CREATE TRIGGER IF NOT EXISTS transaction_items_no_delete BEFORE DELETE ON transaction_items
	BEGIN SELECT RAISE(ABORT, 'append-only'); END;
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// duplicateProduct identifica el índice violado por el mensaje de SQLite.
func duplicateProduct(err error, p *entity.Product) error {
	if strings.Contains(err.Error(), "products.name_key") {
		return &domain.DuplicateProductError{Field: "name", Value: p.Name}
	}
	return &domain.DuplicateProductError{Field: "code", Value: p.Code}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
