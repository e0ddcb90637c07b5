package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Health captures diagnostic information about the document database.
type Health struct {
	Path           string
	Exists         bool
	Readable       bool
	IntegrityOK    bool
	TotalDocuments int
	Error          string
}

// CheckHealth inspects the database file and connection and reports what it
// finds. A partially filled Health is returned alongside any error.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{Path: s.path}

	if s.path == "" {
		return health, errors.New("document database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat document database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("document database path %q is a directory", s.path)
	}
	health.Exists = true

	if s.db == nil {
		return health, errors.New("document database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping document database: %w", err)
	}
	health.Readable = true

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = integrity == "ok"
	if !health.IntegrityOK {
		health.Error = integrity
	}

	var total int
	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(*) FROM documents").Scan(&total); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			health.Error = err.Error()
			return health, fmt.Errorf("count documents: %w", err)
		}
	}
	health.TotalDocuments = total

	return health, nil
}
