// Package export persists downloaded artifacts (CSV tables, chart pages)
// under an export directory. Artifacts are copies of what is streamed to the
// browser; the service keeps no other state on disk.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"tickerdash/internal/dataset"
	"tickerdash/internal/domain"
)

type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates the export directory if needed. Tests pass an
// afero.NewMemMapFs.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	exists, err := afero.DirExists(fs, dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	return &Store{fs: fs, dir: dir}, nil
}

// SaveCSV writes the table as a CSV artifact and returns its path.
func (s *Store) SaveCSV(ctx context.Context, q domain.Query, table *dataset.Table) (string, error) {
	name := s.artifactName(q, "csv")

	f, err := s.fs.Create(name)
	if err != nil {
		return "", fmt.Errorf("failed to create csv artifact: %w", err)
	}
	defer f.Close()

	if err := table.WriteCSV(f); err != nil {
		return "", fmt.Errorf("failed to write csv artifact: %w", err)
	}

	slog.DebugContext(ctx, "saved csv artifact", "path", name, "rows", table.Len())
	return name, nil
}

// SaveChart writes the rendered chart page and returns its path.
func (s *Store) SaveChart(ctx context.Context, q domain.Query, html []byte) (string, error) {
	name := s.artifactName(q, "html")

	if err := afero.WriteFile(s.fs, name, html, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart artifact: %w", err)
	}

	slog.DebugContext(ctx, "saved chart artifact", "path", name, "bytes", len(html))
	return name, nil
}

func (s *Store) artifactName(q domain.Query, ext string) string {
	return path.Join(s.dir, fmt.Sprintf("%s_%s_%s_%s.%s",
		q.Ticker,
		q.Start.Format(domain.DateFormat),
		q.End.Format(domain.DateFormat),
		uuid.NewString(),
		ext,
	))
}
