// Package store handles SQLite persistence of the static noun tables.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/derdie/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrEmpty is returned when no noun table has been imported yet.
var ErrEmpty = errors.New("no nouns imported")

// Store wraps SQLite access for the noun and key ending tables.
type Store struct {
	db *sql.DB
}

// ImportInfo describes the most recent import.
type ImportInfo struct {
	Source     string
	ImportedAt time.Time
	Nouns      int
	Skipped    int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nouns (
			word TEXT NOT NULL,
			gender TEXT NOT NULL,
			usage INTEGER NOT NULL,
			PRIMARY KEY (word, gender)
		);`,
		`CREATE TABLE IF NOT EXISTS key_endings (
			rank INTEGER PRIMARY KEY,
			ending TEXT NOT NULL UNIQUE,
			gender TEXT NOT NULL,
			total INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			coverage REAL NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			imported_at TEXT NOT NULL,
			nouns INTEGER NOT NULL,
			skipped INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nouns_gender ON nouns(gender);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceNouns swaps the noun table for the given nouns and records the import.
func (s *Store) ReplaceNouns(ctx context.Context, nouns []model.Noun, info ImportInfo) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM nouns`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM key_endings`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO nouns (word, gender, usage) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, n := range nouns {
		if _, err = stmt.ExecContext(ctx, n.Word, string(n.Gender), n.Usage); err != nil {
			return err
		}
	}

	importedAt := info.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO imports (source, imported_at, nouns, skipped) VALUES (?, ?, ?, ?)`,
		info.Source, importedAt.Format(time.RFC3339Nano), len(nouns), info.Skipped,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// ListNouns returns every stored noun ordered by word.
func (s *Store) ListNouns(ctx context.Context) ([]model.Noun, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT word, gender, usage FROM nouns ORDER BY word, gender`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var nouns []model.Noun
	for rows.Next() {
		var n model.Noun
		var gender string
		if err := rows.Scan(&n.Word, &gender, &n.Usage); err != nil {
			return nil, err
		}
		n.Gender = model.Gender(gender)
		nouns = append(nouns, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(nouns) == 0 {
		return nil, ErrEmpty
	}
	return nouns, nil
}

// ReplaceKeyEndings stores the key ending table in rank order.
func (s *Store) ReplaceKeyEndings(ctx context.Context, keys []model.KeyEnding) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM key_endings`); err != nil {
		return err
	}
	for i, k := range keys {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO key_endings (rank, ending, gender, total, accuracy, coverage) VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, k.Ending, string(k.Gender), k.Total, k.Accuracy, k.Coverage,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListKeyEndings returns the stored key endings in rank order.
func (s *Store) ListKeyEndings(ctx context.Context) ([]model.KeyEnding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ending, gender, total, accuracy, coverage FROM key_endings ORDER BY rank ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var keys []model.KeyEnding
	for rows.Next() {
		var k model.KeyEnding
		var gender string
		if err := rows.Scan(&k.Ending, &gender, &k.Total, &k.Accuracy, &k.Coverage); err != nil {
			return nil, err
		}
		k.Gender = model.Gender(gender)
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// LastImport returns the most recent import, or ErrEmpty if there is none.
func (s *Store) LastImport(ctx context.Context) (ImportInfo, error) {
	var info ImportInfo
	var importedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, imported_at, nouns, skipped FROM imports ORDER BY id DESC LIMIT 1`,
	).Scan(&info.Source, &importedAt, &info.Nouns, &info.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportInfo{}, ErrEmpty
	}
	if err != nil {
		return ImportInfo{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, importedAt)
	if err != nil {
		return ImportInfo{}, err
	}
	info.ImportedAt = parsed
	return info, nil
}
