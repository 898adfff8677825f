package registrytest_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sagarpkl/medisync/internal/cache"
	"github.com/sagarpkl/medisync/internal/models"
	"github.com/sagarpkl/medisync/internal/registrytest"
	"github.com/sagarpkl/medisync/internal/remote"
	"github.com/sagarpkl/medisync/internal/service"
	"github.com/sagarpkl/medisync/internal/store"
	"github.com/sagarpkl/medisync/internal/transform"
)

// newFixture wires the full client stack against an in-process registry.
func newFixture(t *testing.T) (*registrytest.Server, *remote.Client) {
	t.Helper()
	fake := registrytest.New(zap.NewNop())
	srv := httptest.NewServer(fake.Router())
	t.Cleanup(srv.Close)
	client := remote.NewClient(&http.Client{Timeout: time.Second}, srv.URL, zap.NewNop())
	return fake, client
}

func TestEndToEnd_FetchThroughStore(t *testing.T) {
	fake, client := newFixture(t)
	fake.SetOwner(models.RawRecord{MidasID: "1", FirstName: "A", LastName: "B", Gender: "Male", DOBAD: "1990/01/01"})
	fake.AddRelative(models.RawRecord{FirstName: "C", Relation: "2"})

	st := store.New(client, transform.New(), zap.NewNop())
	st.Fetch(context.Background())

	snap := st.Snapshot()
	require.Empty(t, snap.Error)
	require.Len(t, snap.Patients, 2)
	assert.Equal(t, "1", snap.Patients[0].ID)
	assert.Equal(t, "male", snap.Patients[0].Gender)
	assert.Equal(t, "Brother", snap.Patients[1].Relationship)
}

func TestEndToEnd_CreateThenRefetch(t *testing.T) {
	fake, client := newFixture(t)
	fake.SetOwner(models.RawRecord{MidasID: "1", FirstName: "A"})

	tr := transform.New()
	st := store.New(client, tr, zap.NewNop())
	svc := service.New(st, nil, nil, tr, zap.NewNop())

	form := models.PatientForm{
		FirstName:    "Gita",
		LastName:     "Shrestha",
		Gender:       "female",
		DateOfBirth:  "1995/02/10",
		Phone:        "9841000000",
		Relationship: "sister",
		District:     "Kathmandu",
		Municipality: "Kathmandu Metropolitan",
		Ward:         "12",
	}
	errs, created := svc.Create(context.Background(), form)
	require.Empty(t, errs)
	require.True(t, created)
	assert.Equal(t, "Patient added successfully", st.SuccessMessage())

	// The store never merges; the new record appears on the next fetch.
	st.Fetch(context.Background())
	patients := st.Patients()
	require.Len(t, patients, 2)
	assert.Equal(t, "Gita", patients[1].FirstName)
	// The remote assigned the identifier.
	assert.NotEmpty(t, patients[1].ID)
}

func TestEndToEnd_CacheReadThrough(t *testing.T) {
	fake, client := newFixture(t)
	fake.SetOwner(models.RawRecord{MidasID: "1", FirstName: "A"})

	ca := cache.New(cache.NewMemoryKV(), client, transform.New(), 0, zap.NewNop())
	patients, err := ca.List(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 1)

	// Mutations on the service are invisible to fresh cache entries until
	// invalidation.
	fake.AddRelative(models.RawRecord{FirstName: "Late"})
	patients, err = ca.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 1)

	ca.Invalidate(context.Background(), cache.ListKey())
	patients, err = ca.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, patients, 2)
}

func TestEndToEnd_RemoteRejection(t *testing.T) {
	fake, client := newFixture(t)
	fake.FailWith("session expired")

	st := store.New(client, transform.New(), zap.NewNop())
	st.Fetch(context.Background())

	assert.Equal(t, "session expired", st.ErrorMessage())
	assert.Empty(t, st.Patients())
}
