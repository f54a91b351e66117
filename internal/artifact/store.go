package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/rentaldocs/internal/config"
	"github.com/smallbiznis/rentaldocs/internal/stay"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// staleTolerance absorbs filesystem timestamp granularity.
const staleTolerance = time.Millisecond

var ErrInvalidPath = errors.New("invalid_artifact_path")

// Store keeps generated PDFs under DATA_DIR. Paths handed out are relative
// to DATA_DIR so the directory can move without rewriting rows.
type Store struct {
	dataDir string
	subdir  string
	log     *zap.Logger
}

var Module = fx.Module("artifact", fx.Provide(New))

func New(cfg config.Config, log *zap.Logger) *Store {
	return NewStore(cfg.DataDir, cfg.PDFSubdir, log)
}

func NewStore(dataDir, subdir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if subdir == "" {
		subdir = "pdfs"
	}
	return &Store{dataDir: dataDir, subdir: subdir, log: log.Named("artifact.store")}
}

// Path is {subdir}/{year}/{month}/{number}.pdf. The year comes from the
// number's second segment when present, the month from the stay start.
func (s *Store) Path(number string, start stay.Date) string {
	year := fmt.Sprintf("%d", start.Year())
	if parts := strings.Split(number, "-"); len(parts) > 1 && parts[1] != "" {
		year = parts[1]
	}
	month := fmt.Sprintf("%02d", int(start.Month()))
	return filepath.Join(s.subdir, year, month, number+".pdf")
}

// Resolve maps a stored relative path to the filesystem.
func (s *Store) Resolve(rel string) (string, error) {
	if rel == "" {
		return "", ErrInvalidPath
	}
	if filepath.IsAbs(rel) {
		return rel, nil
	}
	clean := filepath.Clean(rel)
	if strings.HasPrefix(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.dataDir, clean), nil
}

// Write replaces the artifact atomically.
func (s *Store) Write(rel string, data []byte) error {
	abs, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".tmp-*.pdf")
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store artifact: %w", err)
	}
	return nil
}

// Remove unlinks the artifact; a missing file is not an error.
func (s *Store) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	abs, err := s.Resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("artifact remove failed", zap.String("path", rel), zap.Error(err))
		return err
	}
	return nil
}

// RemoveAll unlinks every path and reports how many failed.
func (s *Store) RemoveAll(paths []string) int {
	failed := 0
	for _, p := range paths {
		if err := s.Remove(p); err != nil {
			failed++
		}
	}
	return failed
}

// IsStale reports whether the artifact is missing or older than any source.
func (s *Store) IsStale(rel string, sources ...time.Time) (bool, error) {
	abs, err := s.Resolve(rel)
	if err != nil {
		return true, nil
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	var latest time.Time
	for _, t := range sources {
		if t.After(latest) {
			latest = t
		}
	}
	return info.ModTime().Add(staleTolerance).Before(latest), nil
}

// DownloadName builds the attachment file name, e.g. "contrat-lib-2026-000001-dupont.pdf".
func DownloadName(prefix, number, tenant string) string {
	parts := []string{prefix, number}
	if strings.TrimSpace(tenant) != "" {
		parts = append(parts, tenant)
	}
	name := slug.Make(strings.Join(parts, " "))
	if name == "" {
		name = "document"
	}
	return name + ".pdf"
}
