// Package migrations applies the embedded schema and seed files and tracks
// which of them already ran.
package migrations

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wichananm65/fakturera/internal/database"
)

//go:embed sql/*.sql
var embedded embed.FS

type FileInfo struct {
	Name     string `json:"name"`
	Checksum string `json:"checksum"`
}

type Status struct {
	Name      string     `json:"name"`
	Checksum  string     `json:"checksum"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

type Service struct {
	db   *sql.DB
	fsys fs.FS
	log  *zap.Logger
}

// NewService uses the SQL files compiled into the binary.
func NewService(db *sql.DB, log *zap.Logger) *Service {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err)
	}
	return &Service{db: db, fsys: sub, log: log}
}

// List returns the migration files in the order they are applied.
func (s *Service) List() ([]FileInfo, error) {
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := fs.ReadFile(s.fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		sum := sha256.Sum256(b)
		out = append(out, FileInfo{Name: e.Name(), Checksum: hex.EncodeToString(sum[:])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) Status(ctx context.Context) ([]Status, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	applied, err := s.applied(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(files))
	for _, f := range files {
		st := Status{Name: f.Name, Checksum: f.Checksum}
		if at, ok := applied[f.Name]; ok {
			st.Applied = true
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Apply runs every pending file in lexical order, each in its own
// transaction together with its bookkeeping row. It stops at the first
// failure and returns the names applied so far.
func (s *Service) Apply(ctx context.Context) ([]string, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	applied, err := s.applied(ctx)
	if err != nil {
		return nil, err
	}

	done := make([]string, 0)
	for _, f := range files {
		if _, ok := applied[f.Name]; ok {
			s.log.Debug("skipping applied migration", zap.String("file", f.Name))
			continue
		}
		if err := s.run(ctx, f.Name); err != nil {
			return done, err
		}
		s.log.Info("applied migration", zap.String("file", f.Name), zap.String("checksum", f.Checksum))
		done = append(done, f.Name)
	}
	return done, nil
}

func (s *Service) run(ctx context.Context, name string) error {
	body, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO migrations (filename) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		return nil
	})
}

func (s *Service) ensureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS migrations (
	id SERIAL PRIMARY KEY,
	filename VARCHAR(255) UNIQUE NOT NULL,
	applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure migrations schema: %w", err)
	}
	return nil
}

type appliedRow struct {
	name string
	at   time.Time
}

func (s *Service) applied(ctx context.Context) (map[string]time.Time, error) {
	rows, err := database.Select(ctx, s.db, func(r database.RowScanner) (appliedRow, error) {
		var row appliedRow
		err := r.Scan(&row.name, &row.at)
		return row, err
	}, `SELECT filename, applied_at FROM migrations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}

	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.name] = r.at.UTC()
	}
	return out, nil
}
