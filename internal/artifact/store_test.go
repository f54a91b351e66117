package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smallbiznis/rentaldocs/internal/stay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPathUsesNumberYearAndStartMonth(t *testing.T) {
	s := NewStore(t.TempDir(), "pdfs", zap.NewNop())

	start := stay.NewDate(2025, time.December, 30)
	assert.Equal(t, filepath.Join("pdfs", "2026", "12", "LIB-2026-000003.pdf"), s.Path("LIB-2026-000003", start))
	assert.Equal(t, filepath.Join("pdfs", "2025", "12", "DRAFT.pdf"), s.Path("DRAFT", start))
}

func TestWriteRemove(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "pdfs", zap.NewNop())
	rel := s.Path("LIB-2026-000001", stay.NewDate(2026, time.March, 2))

	require.NoError(t, s.Write(rel, []byte("%PDF")))
	data, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, s.Remove(rel))
	_, err = os.Stat(filepath.Join(dir, rel))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(rel), "second remove is a no-op")
}

func TestResolveRejectsEscapes(t *testing.T) {
	s := NewStore(t.TempDir(), "pdfs", zap.NewNop())
	_, err := s.Resolve("../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestIsStale(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "pdfs", zap.NewNop())
	rel := filepath.Join("pdfs", "2026", "01", "X.pdf")

	stale, err := s.IsStale(rel, time.Now())
	require.NoError(t, err)
	assert.True(t, stale, "missing artifact")

	require.NoError(t, s.Write(rel, []byte("%PDF")))
	written := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, rel), written, written))

	stale, err = s.IsStale(rel, written.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, stale)

	stale, err = s.IsStale(rel, written.Add(-time.Hour), written.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "contrat-lib-2026-000001-jean-dupont.pdf", DownloadName("contrat", "LIB-2026-000001", "Jean Dupont"))
	assert.Equal(t, "facture-pra-2026-02.pdf", DownloadName("facture", "PRA-2026-02", " "))
}
