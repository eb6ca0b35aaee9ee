package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"classichub-service/internal/domain"
	"classichub-service/internal/infra/postgres/migrations"
	"classichub-service/internal/store"
)

// setupSQLite opens a migrated sqlite database in a temp dir.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "hub.db")), false)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))
	t.Cleanup(func() { _ = Close(db) })

	return db
}

// setupPostgres creates a PostgreSQL testcontainer and returns a migrated GORM DB
//
// Prerequisites:
//   - Docker must be running
//
// OR
//   - Skip tests with: go test -short
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgresContainer.Run(ctx,
		"postgres:16-alpine",
		postgresContainer.WithDatabase("testdb"),
		postgresContainer.WithUsername("testuser"),
		postgresContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf(`Failed to start PostgreSQL container: %v

Docker Prerequisites:
1. Ensure Docker is running
2. OR skip integration tests: go test -short

`, err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, err := Open(postgresDriver.Open(connStr), false)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, migrations.Run(db), "Failed to run migrations")

	t.Cleanup(func() {
		_ = Close(db)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	return db
}

func cheer(id, artistID string, at time.Time) domain.CheerMessage {
	return domain.CheerMessage{
		ID:        id,
		ArtistID:  artistID,
		Author:    "fan",
		Message:   "브라보 " + id,
		CreatedAt: at,
	}
}

// exerciseRepository runs the shared contract against any dialect.
func exerciseRepository(t *testing.T, db *gorm.DB) {
	repo := NewRepository(db)
	ctx := context.Background()

	// follows
	require.NoError(t, repo.SetFollow(ctx, "performer-1", true))
	require.NoError(t, repo.SetFollow(ctx, "conductor-0", true))
	require.NoError(t, repo.SetFollow(ctx, "performer-1", true), "following twice is a no-op")

	ids, err := repo.ListFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"conductor-0", "performer-1"}, ids)

	require.NoError(t, repo.SetFollow(ctx, "performer-1", false))
	require.NoError(t, repo.SetFollow(ctx, "nobody", false))

	ids, err = repo.ListFollows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"conductor-0"}, ids)

	// cheers
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AddCheer(ctx, cheer("c2", "performer-0", base.Add(time.Minute))))
	require.NoError(t, repo.AddCheer(ctx, cheer("c1", "performer-0", base)))
	require.NoError(t, repo.AddCheer(ctx, cheer("c3", "performer-1", base.Add(2*time.Minute))))

	msgs, err := repo.ListCheers(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "c1", msgs[0].ID, "oldest first")
	assert.Equal(t, "c2", msgs[1].ID)
	assert.True(t, base.Equal(msgs[0].CreatedAt))
	assert.Equal(t, "브라보 c1", msgs[0].Message)

	require.NoError(t, repo.DeleteCheer(ctx, "c2"))
	require.NoError(t, repo.DeleteCheer(ctx, "missing"))

	msgs, err = repo.ListCheers(ctx)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRepository_SQLite(t *testing.T) {
	exerciseRepository(t, setupSQLite(t))
}

func TestRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	exerciseRepository(t, setupPostgres(t))
}

func TestRepository_BacksLocalState(t *testing.T) {
	db := setupSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	follows := store.NewFollowSet(repo, nil)
	cheers := store.NewCheerBoard(repo, nil, nil)

	_, err := follows.Toggle(ctx, "performer-0")
	require.NoError(t, err)
	msg, err := cheers.Add(ctx, "performer-0", "fan", "최고의 연주!")
	require.NoError(t, err)

	// a fresh process sees the same state
	reloadedFollows := store.NewFollowSet(repo, nil)
	reloadedCheers := store.NewCheerBoard(repo, nil, nil)
	require.NoError(t, reloadedFollows.Load(ctx))
	require.NoError(t, reloadedCheers.Load(ctx))

	assert.True(t, reloadedFollows.IsFollowed("performer-0"))
	got := reloadedCheers.ForArtist("performer-0")
	require.Len(t, got, 1)
	assert.Equal(t, msg.ID, got[0].ID)
}

func TestRepository_FailedPersistRollsBack(t *testing.T) {
	db := setupSQLite(t)
	repo := NewRepository(db)
	ctx := context.Background()

	follows := store.NewFollowSet(repo, nil)
	require.NoError(t, Close(db))

	followed, err := follows.Toggle(ctx, "performer-0")

	require.Error(t, err)
	assert.False(t, followed)
	assert.False(t, follows.IsFollowed("performer-0"))
}

func TestMigrations_Rollback(t *testing.T) {
	db := setupSQLite(t)

	require.NoError(t, migrations.Rollback(db))
	assert.False(t, db.Migrator().HasTable("cheers"))
	assert.True(t, db.Migrator().HasTable("follows"))

	require.NoError(t, migrations.Run(db))
	assert.True(t, db.Migrator().HasTable("cheers"))
}
