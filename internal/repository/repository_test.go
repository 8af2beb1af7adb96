//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shenikar/safe_route_system/internal/models"
	"github.com/shenikar/safe_route_system/internal/service"
	"github.com/shenikar/safe_route_system/pkg/e"
)

var (
	testPool   *pgxpool.Pool
	testRedis  *redis.Client
	containers []testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	code, err := run(ctx, m)
	if err != nil {
		fmt.Println(err)
		code = 1
	}

	if testPool != nil {
		testPool.Close()
	}
	if testRedis != nil {
		_ = testRedis.Close()
	}
	for _, c := range containers {
		_ = c.Terminate(ctx)
	}
	os.Exit(code)
}

func run(ctx context.Context, m *testing.M) (int, error) {
	user, pass, db := "postgres", "postgres", "routes"

	pg, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(90 * time.Second),
	})
	if err != nil {
		return 0, fmt.Errorf("cannot start postgres container: %w", err)
	}
	host, _ := pg.Host(ctx)
	pgPort, _ := pg.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, pgPort.Port(), db)

	migrator, err := migrate.New("file://../../migrations", "pgx5://"+dsn)
	if err != nil {
		return 0, fmt.Errorf("migrate.New: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate up: %w", err)
	}

	testPool, err = pgxpool.New(ctx, "postgres://"+dsn)
	if err != nil {
		return 0, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := testPool.Ping(ctx); err != nil {
		return 0, fmt.Errorf("pool.Ping: %w", err)
	}

	rd, err := startContainer(ctx, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
	})
	if err != nil {
		return 0, fmt.Errorf("cannot start redis container: %w", err)
	}
	redisHost, _ := rd.Host(ctx)
	redisPort, _ := rd.MappedPort(ctx, "6379/tcp")
	testRedis = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})

	return m.Run(), nil
}

func startContainer(ctx context.Context, req testcontainers.ContainerRequest) (testcontainers.Container, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if c != nil {
		containers = append(containers, c)
	}
	return c, err
}

func truncateTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE hazard_reports, users`)
	require.NoError(t, err)
}

func createUser(t *testing.T, store *Store, score int) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Score: models.InitialScore}
	require.NoError(t, store.Users().Create(ctx, user))
	if score != models.InitialScore {
		require.NoError(t, store.Users().UpdateScore(ctx, user.ID, score))
		user.Score = score
	}
	return user
}

func createReport(t *testing.T, store *Store, creatorID uuid.UUID, valid bool) *models.HazardReport {
	t.Helper()
	report := &models.HazardReport{
		CreatorID:      creatorID,
		Classification: models.Flooding,
		Latitude:       -3.71,
		Longitude:      -38.51,
		IsValid:        valid,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.Reports().Create(context.Background(), report))
	return report
}

func TestUserRepository_CreateDefaults(t *testing.T) {
	truncateTables(t)
	store := NewStore(testPool)

	user := createUser(t, store, models.InitialScore)

	got, err := store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InitialScore, got.Score)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = store.Users().GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestUserRepository_ScoreBounds(t *testing.T) {
	truncateTables(t)
	store := NewStore(testPool)
	user := createUser(t, store, models.InitialScore)

	err := store.Users().UpdateScore(context.Background(), user.ID, 101)
	assert.ErrorIs(t, err, e.ErrMalformedInput)

	err = store.Users().UpdateScore(context.Background(), uuid.New(), 60)
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestReportRepository_CreateAndGet(t *testing.T) {
	truncateTables(t)
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)

	report := createReport(t, store, creator.ID, false)

	got, err := store.Reports().GetByID(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, creator.ID, got.CreatorID)
	assert.Equal(t, models.Flooding, got.Classification)
	assert.InDelta(t, -3.71, got.Latitude, 1e-9)
	assert.InDelta(t, -38.51, got.Longitude, 1e-9)
	assert.False(t, got.IsValid)
}

func TestReportRepository_Description(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)

	report := &models.HazardReport{
		CreatorID:      creator.ID,
		Classification: models.Closure,
		Description:    "Bridge closed for repairs",
		Latitude:       -3.72,
		Longitude:      -38.52,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.Reports().Create(ctx, report))

	got, err := store.Reports().GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bridge closed for repairs", got.Description)

	// Без описания хранится пустая строка
	plain := createReport(t, store, creator.ID, false)
	got, err = store.Reports().GetByID(ctx, plain.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Description)
}

func TestReportRepository_UnknownCreator(t *testing.T) {
	truncateTables(t)
	store := NewStore(testPool)

	err := store.Reports().Create(context.Background(), &models.HazardReport{
		CreatorID:      uuid.New(),
		Classification: models.Pothole,
		CreatedAt:      time.Now(),
	})

	assert.ErrorIs(t, err, e.ErrMalformedInput)
}

func TestReportRepository_ListConfirmed(t *testing.T) {
	truncateTables(t)
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)
	confirmed := createReport(t, store, creator.ID, true)
	createReport(t, store, creator.ID, false)

	all, err := store.Reports().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	valid, err := store.Reports().ListConfirmed(context.Background())
	require.NoError(t, err)
	require.Len(t, valid, 1)
	assert.Equal(t, confirmed.ID, valid[0].ID)
}

func TestReportRepository_PendingOnlyTransitions(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)
	pending := createReport(t, store, creator.ID, false)
	removed := createReport(t, store, creator.ID, false)

	require.NoError(t, store.Reports().Confirm(ctx, pending.ID))
	assert.ErrorIs(t, store.Reports().Confirm(ctx, pending.ID), e.ErrAlreadyResolved)
	assert.ErrorIs(t, store.Reports().Delete(ctx, pending.ID), e.ErrAlreadyResolved)

	require.NoError(t, store.Reports().Delete(ctx, removed.ID))
	assert.ErrorIs(t, store.Reports().Delete(ctx, removed.ID), e.ErrNotFound)
	assert.ErrorIs(t, store.Reports().Confirm(ctx, removed.ID), e.ErrNotFound)
}

func TestStore_WithTxRollback(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)
	report := createReport(t, store, creator.ID, false)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx service.Store) error {
		require.NoError(t, tx.Reports().Confirm(ctx, report.ID))
		require.NoError(t, tx.Users().UpdateScore(ctx, creator.ID, 60))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Reports().GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	user, err := store.Users().GetByID(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InitialScore, user.Score)

	err = store.WithTx(ctx, func(tx service.Store) error {
		return tx.WithTx(ctx, func(service.Store) error { return nil })
	})
	assert.ErrorIs(t, err, ErrAlreadyInTx)
}

func TestValidationService_ConcurrentVotesOnPostgres(t *testing.T) {
	truncateTables(t)
	ctx := context.Background()
	store := NewStore(testPool)
	creator := createUser(t, store, models.InitialScore)
	report := createReport(t, store, creator.ID, false)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	// Отдельные экземпляры сервиса имитируют несколько процессов без общей блокировки в памяти
	services := []service.ValidationService{
		service.NewValidationService(store, nil, nil, logger, nil),
		service.NewValidationService(store, nil, nil, logger, nil),
	}

	const votes = 20
	voters := make([]*models.User, votes)
	for i := range voters {
		voters[i] = createUser(t, store, models.InitialScore)
	}

	errs := make(chan error, votes)
	var wg sync.WaitGroup
	for i, voter := range voters {
		wg.Add(1)
		go func(i int, voterID uuid.UUID) {
			defer wg.Done()
			_, err := services[i%len(services)].CastVote(ctx, models.Vote{ReportID: report.ID, VoterID: voterID, Approve: true})
			errs <- err
		}(i, voter.ID)
	}
	wg.Wait()
	close(errs)

	successes := 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, e.ErrAlreadyResolved)
	}
	assert.Equal(t, 1, successes)

	user, err := store.Users().GetByID(ctx, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, user.Score)
}

func TestHazardCache(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testRedis.FlushDB(ctx).Err())
	cache := NewHazardCache(testRedis, time.Minute)

	got, gen, err := cache.GetConfirmed(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(0), gen)

	reports := []*models.HazardReport{{ID: uuid.New(), Classification: models.Closure, Latitude: 1, Longitude: 2, IsValid: true}}
	require.NoError(t, cache.SetConfirmed(ctx, gen, reports))

	got, _, err = cache.GetConfirmed(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, reports[0].ID, got[0].ID)

	require.NoError(t, cache.InvalidateConfirmed(ctx))
	got, next, err := cache.GetConfirmed(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, gen+1, next)

	// Пустой список — это попадание, а не промах
	require.NoError(t, cache.SetConfirmed(ctx, next, nil))
	got, _, err = cache.GetConfirmed(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHazardCache_StaleGenerationIsNotWritten(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, testRedis.FlushDB(ctx).Err())
	cache := NewHazardCache(testRedis, time.Minute)

	_, gen, err := cache.GetConfirmed(ctx)
	require.NoError(t, err)

	// Сброс между чтением поколения и записью
	require.NoError(t, cache.InvalidateConfirmed(ctx))

	stale := []*models.HazardReport{{ID: uuid.New(), Classification: models.Pothole, IsValid: true}}
	err = cache.SetConfirmed(ctx, gen, stale)
	assert.ErrorIs(t, err, service.ErrStaleCache)

	got, _, err := cache.GetConfirmed(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}
