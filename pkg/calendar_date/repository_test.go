//go:build integration

package calendar_date

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nichecal/nichecal/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T, match MatchMode) (context.Context, *RepositoryImpl) {
	ctx := context.Background()
	db := openDb()
	repository := NewRepository(db, "dastas_2025", match)
	t.Cleanup(func() {
		db.Close()
		err := pgContainer.Restore(ctx)
		require.NoError(t, err)
	})
	return ctx, repository
}

func seedRows(t *testing.T, ctx context.Context, repo *RepositoryImpl) {
	for _, row := range []Row{
		{Data: "2025-09-07", Descricao: "Independência do Brasil", Tipo: "holiday", Niches: []string{"finance", "education"}},
		{Data: "2025-04-04", Descricao: "Dia do Cão", Tipo: "commemorative", Niches: []string{"pets"}},
		{Data: "2025-06-19", Descricao: "Corpus Christi", Tipo: "optional", Niches: []string{"finance", "pets"}},
	} {
		require.NoError(t, repo.StoreRow(ctx, row))
	}
}

func TestRepositoryImpl_FindByNiches(t *testing.T) {
	t.Run("should return rows overlapping requested niches ordered by date", func(t *testing.T) {
		ctx, repo := setupTestRepository(t, MatchOverlap)
		seedRows(t, ctx, repo)

		rows, err := repo.FindByNiches(ctx, []string{"pets", "music"})

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2025-04-04", rows[0].Data)
		assert.Equal(t, "Dia do Cão", rows[0].Descricao)
		assert.Equal(t, "commemorative", rows[0].Tipo)
		assert.Equal(t, []string{"pets"}, rows[0].Niches)
		assert.Equal(t, "2025-06-19", rows[1].Data)
	})

	t.Run("should require every niche in contains mode", func(t *testing.T) {
		ctx, repo := setupTestRepository(t, MatchContains)
		seedRows(t, ctx, repo)

		rows, err := repo.FindByNiches(ctx, []string{"pets", "finance"})

		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Corpus Christi", rows[0].Descricao)
	})

	t.Run("should return empty list when nothing matches", func(t *testing.T) {
		ctx, repo := setupTestRepository(t, MatchOverlap)
		seedRows(t, ctx, repo)

		rows, err := repo.FindByNiches(ctx, []string{"fashion"})

		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("should fail for missing table", func(t *testing.T) {
		ctx := context.Background()
		db := openDb()
		defer db.Close()
		repo := NewRepository(db, "missing_table", MatchOverlap)

		_, err := repo.FindByNiches(ctx, []string{"pets"})

		require.Error(t, err)
	})
}

func TestRepositoryImpl_ListNiches(t *testing.T) {
	ctx, repo := setupTestRepository(t, MatchOverlap)
	seedRows(t, ctx, repo)

	niches, err := repo.ListNiches(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"education", "finance", "pets"}, niches)
}
