package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldocs/internal/artifact"
	"github.com/smallbiznis/rentaldocs/internal/clock"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	giterepository "github.com/smallbiznis/rentaldocs/internal/gite/repository"
	giteservice "github.com/smallbiznis/rentaldocs/internal/gite/service"
	"github.com/smallbiznis/rentaldocs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEnsureGitesIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t, &gitedomain.Gite{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)

	svc := giteservice.New(giteservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      giterepository.Provide(),
		Artifacts: artifact.NewStore(t.TempDir(), "pdfs", log),
		Clock:     clock.NewFakeClock(time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)),
	})

	created, err := EnsureGites(context.Background(), svc, log)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = EnsureGites(context.Background(), svc, log)
	require.NoError(t, err)
	assert.Zero(t, created)

	var prefixes []string
	require.NoError(t, db.Model(&gitedomain.Gite{}).Order("prefixe_contrat").Pluck("prefixe_contrat", &prefixes).Error)
	assert.Equal(t, []string{"LIB", "PRA"}, prefixes)
}
