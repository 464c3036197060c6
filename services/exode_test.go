package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExodeClientFindUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if r.URL.Query().Get("email") == "known@example.com" {
			json.NewEncoder(w).Encode(ExodeUser{ID: "ex-1", Email: "known@example.com", FullName: "Known"})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewExodeClient(server.URL, "test-key")

	user, err := client.FindUser("known@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "ex-1", user.ID)

	// Absent learner is not an error, just nil.
	user, err = client.FindUser("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSyncUserBalanceOverwritesCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExodeBalance{UserID: "ex-1", Points: 250})
	}))
	defer server.Close()

	db := newTestDB(t)
	svc := NewExodeService(db, NewExodeClient(server.URL, "test-key"))

	user := seedUser(t, db, "learner", nil, 40)
	exodeID := "ex-1"
	user.ExodeUserID = &exodeID
	require.NoError(t, db.Save(user).Error)

	require.NoError(t, svc.SyncUserBalance(user))

	standing, err := NewLeaderboardService(db).GetUserStanding(user.ID)
	require.NoError(t, err)
	// Wholesale overwrite: 40 → 250, not 40+250.
	assert.Equal(t, int64(250), standing.ExodeCoursePoints)
	assert.Equal(t, int64(250), standing.CombinedPoints)
}

func TestSyncUserBalanceRequiresLink(t *testing.T) {
	db := newTestDB(t)
	svc := NewExodeService(db, NewExodeClient("http://localhost:0", "test-key"))

	user := seedUser(t, db, "unlinked", nil, 0)
	assert.Error(t, svc.SyncUserBalance(user))
}

func TestSyncAllLinkedSkipsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ex-bad gets a 500; everyone else syncs fine.
		if r.URL.Path == "/api/users/ex-bad/balance" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(ExodeBalance{Points: 99})
	}))
	defer server.Close()

	db := newTestDB(t)
	svc := NewExodeService(db, NewExodeClient(server.URL, "test-key"))

	good := seedUser(t, db, "good", nil, 0)
	goodID := "ex-good"
	good.ExodeUserID = &goodID
	require.NoError(t, db.Save(good).Error)

	bad := seedUser(t, db, "bad", nil, 0)
	badID := "ex-bad"
	bad.ExodeUserID = &badID
	require.NoError(t, db.Save(bad).Error)

	seedUser(t, db, "unlinked", nil, 0)

	synced, failed := svc.SyncAllLinked()
	assert.Equal(t, 1, synced)
	assert.Equal(t, 1, failed)
}
