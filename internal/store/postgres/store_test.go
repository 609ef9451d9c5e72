package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/entities-sink/ksink/internal/cursor"
	"github.com/entities-sink/ksink/internal/store/postgres"
	"github.com/entities-sink/ksink/internal/value"
)

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("SKIP_INTEGRATION set, skipping testcontainers-backed postgres test")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:17",
		tcpostgres.WithDatabase("ksink"),
		tcpostgres.WithUsername("ksink"),
		tcpostgres.WithPassword("ksink"),
		tcpostgres.BasicWaitStrategies(),
		tcpostgres.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := postgres.Open(ctx, postgres.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEntityLifecycleAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Entities().Create(ctx, "E1", "S1"))
	require.NoError(t, tx.Entities().Create(ctx, "E1", "S1")) // idempotent
	require.NoError(t, tx.Entities().UpsertName(ctx, "E1", "Entity One", "S1"))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := s.BeginTx(ctx)
	require.NoError(t, err)
	exists, err := tx2.Entities().Exists(ctx, "E1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, tx2.Rollback(ctx))
}

func TestTripleIdempotentUpsertAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	v, err := value.New(value.TagString, "V1", "hello")
	require.NoError(t, err)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Entities().Create(ctx, "E1", "S1"))
	require.NoError(t, tx.Entities().Create(ctx, "A1", "S1"))
	require.NoError(t, tx.Triples().Create(ctx, "E1", "A1", v, "S1", "auth"))
	require.NoError(t, tx.Triples().Create(ctx, "E1", "A1", v, "S1", "auth"))
	exists, err := tx.Triples().Exists(ctx, "E1", "A1", "V1")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, tx.Commit(ctx))
}

func TestCursorRoundTripAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Cursor().Save(ctx, cursor.Checkpoint{Token: "abc", BlockNumber: 7}))
	cp, ok, err := s.Cursor().Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(7), cp.BlockNumber)
}

func TestSpaceRootFlagAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Spaces().Create(ctx, "root-space", "0xroot", "root-space", true))
	require.NoError(t, tx.Spaces().Create(ctx, "discovered-space", "0xdisc", "root-space", false))
	require.NoError(t, tx.Commit(ctx))

	tx2, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer tx2.Rollback(ctx)

	isRoot, err := tx2.Spaces().IsRootSpace(ctx, "root-space")
	require.NoError(t, err)
	require.True(t, isRoot)

	isRoot, err = tx2.Spaces().IsRootSpace(ctx, "discovered-space")
	require.NoError(t, err)
	require.False(t, isRoot)
}

// The attr_<attribute_id> projection column's SQL type follows the
// attribute's recorded value-type: a number-valued attribute gets an
// integer column, an entity-valued one gets text with a foreign key
// back to entities, matching spec.md §6's schema projection rules.
func TestSchemaProjectionColumnTypeAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Entities().Create(ctx, "Person", "S1"))
	require.NoError(t, tx.Entities().Create(ctx, "Age", "S1"))
	require.NoError(t, tx.Entities().Create(ctx, "BestFriend", "S1"))
	require.NoError(t, tx.Entities().Create(ctx, "Person2", "S1"))
	require.NoError(t, tx.Entities().UpsertValueType(ctx, "Age", "Number", "S1"))
	require.NoError(t, tx.Entities().UpsertValueType(ctx, "BestFriend", "Person2", "S1"))

	require.NoError(t, tx.Entities().AddType(ctx, "Person", "Person2", "S1", true))
	require.NoError(t, tx.Entities().AddRelation(ctx, "Person2", "Age", "S1"))
	require.NoError(t, tx.Entities().AddRelation(ctx, "Person2", "BestFriend", "S1"))
	require.NoError(t, tx.Commit(ctx))

	db := s.DB()
	var ageType, friendType string
	require.NoError(t, db.QueryRowContext(ctx, `
		SELECT data_type FROM information_schema.columns
		WHERE table_schema = 'space_S1' AND table_name = 'type_Person2' AND column_name = 'attr_Age'
	`).Scan(&ageType))
	require.Equal(t, "bigint", ageType)

	require.NoError(t, db.QueryRowContext(ctx, `
		SELECT data_type FROM information_schema.columns
		WHERE table_schema = 'space_S1' AND table_name = 'type_Person2' AND column_name = 'attr_BestFriend'
	`).Scan(&friendType))
	require.Equal(t, "text", friendType)
}

func TestBookkeepingTablesExistAgainstRealPostgres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	for _, table := range []string{"accounts", "log_entries", "proposals", "proposed_versions", "actions", "versions"} {
		var count int
		require.NoError(t, db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1
		`, table).Scan(&count))
		require.Equalf(t, 1, count, "table %s should exist", table)
	}
}
