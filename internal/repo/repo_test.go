package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Thermolab/internal/calc/engine"
	"Thermolab/internal/config"
	"Thermolab/internal/domain"
	"Thermolab/internal/experiments"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://u:p@db/lab", "postgres://u:p@db/lab?sslmode=require"},
		{"postgresql://db/lab?connect_timeout=5", "postgresql://db/lab?connect_timeout=5&sslmode=require"},
		{"user=lab dbname=lab", "user=lab dbname=lab sslmode=require"},
		{"postgres://db/lab?sslmode=disable", "postgres://db/lab?sslmode=disable"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, withSSLMode(tt.in))
	}
}

type memExperiments struct {
	ExperimentRepository
	bySlug map[string]domain.Experiment
}

func (m *memExperiments) GetBySlug(_ context.Context, slug string) (domain.Experiment, error) {
	e, ok := m.bySlug[slug]
	if !ok {
		return e, ErrNotFound
	}
	return e, nil
}

func (m *memExperiments) Create(_ context.Context, e domain.Experiment) (int, error) {
	m.bySlug[e.Slug] = e
	return len(m.bySlug), nil
}

func TestSeedSkipsExisting(t *testing.T) {
	c, err := experiments.Builtin()
	require.NoError(t, err)
	mem := &memExperiments{bySlug: map[string]domain.Experiment{
		domain.SlugThermalConductivity: {Slug: domain.SlugThermalConductivity, Title: "kept"},
	}}

	added, err := Seed(context.Background(), mem, c.All())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "kept", mem.bySlug[domain.SlugThermalConductivity].Title)
	assert.Contains(t, mem.bySlug, domain.SlugNaturalConvection)

	added, err = Seed(context.Background(), mem, c.All())
	require.NoError(t, err)
	assert.Zero(t, added)
}

// testDB connects to TEST_DATABASE_URL or skips the test.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{URL: url, MaxOpenConns: 2, MaxIdleConns: 2, ConnLifetime: time.Minute})
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExperimentRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	r := NewPostgresExperimentDB(db)

	slug := "test-" + uuid.NewString()[:8]
	exp := domain.Experiment{Slug: slug, Title: "Test rig", Content: domain.Content{
		Aim:       "check storage",
		Constants: domain.Constants{"g": {Value: 9.81, Unit: "m/s^2"}},
	}}
	id, err := r.Create(ctx, exp)
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec("DELETE FROM experiments WHERE id=$1", id) })

	_, err = r.Create(ctx, exp)
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "check storage", got.Content.Aim)

	consts, err := r.Constants(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, 9.81, consts["g"].Value)

	got.Title = "Renamed rig"
	require.NoError(t, r.Update(ctx, got))
	got, err = r.GetBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Equal(t, "Renamed rig", got.Title)

	_, err = r.Constants(ctx, slug+"-missing")
	assert.ErrorIs(t, err, engine.ErrConstantsNotFound)
	assert.ErrorIs(t, r.Update(ctx, domain.Experiment{ID: -1, Slug: slug + "-x"}), ErrNotFound)
}

func TestRunRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	exps := NewPostgresExperimentDB(db)
	runs := NewPostgresRunDB(db)

	slug := "test-" + uuid.NewString()[:8]
	expID, err := exps.Create(ctx, domain.Experiment{Slug: slug, Title: "Runs"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Exec("DELETE FROM student_runs WHERE experiment_id=$1", expID)
		db.Exec("DELETE FROM experiments WHERE id=$1", expID)
	})

	before, err := runs.CountRuns(ctx)
	require.NoError(t, err)

	inputs, _ := json.Marshal(map[string]any{"v": 100})
	results, _ := json.Marshal(map[string]any{"results": map[string]any{"k_avg": 380}})
	id, err := runs.SaveRun(ctx, domain.Run{
		ExperimentID: expID, StudentName: "A. Student", USN: "1XX21ME001",
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Inputs: inputs, Results: results,
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	after, err := runs.CountRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	list, err := runs.ListRuns(ctx, slug, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, slug, list[0].Slug)
	assert.JSONEq(t, string(inputs), string(list[0].Inputs))
}

func TestUserRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	r := NewPostgresUserDB(db)

	login := "inst-" + uuid.NewString()[:8]
	id, err := r.CreateUser(ctx, login, login+"@lab.test", "hash")
	require.NoError(t, err)
	t.Cleanup(func() { db.Exec("DELETE FROM instructors WHERE id=$1", id) })

	gotID, hash, err := r.GetBylogin(ctx, login)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, "hash", hash)

	gotID, _, err = r.GetBylogin(ctx, login+"-nobody")
	require.NoError(t, err)
	assert.Zero(t, gotID)
}
