package analysis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyayamitra/nyaya-mitra/internal/database"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/queue"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

type testEnv struct {
	users         *repository.UserRepo
	docs          *repository.DocumentRepo
	notifications *repository.NotificationRepo
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))
	return testEnv{
		users:         repository.NewUserRepo(db),
		docs:          repository.NewDocumentRepo(db),
		notifications: repository.NewNotificationRepo(db),
	}
}

func TestAnalyzerCompletesDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uid, err := env.users.Create(ctx, "analyzed", "analyzed@example.com", "password123", "Doc Owner", nil, model.RoleCitizen, 4)
	require.NoError(t, err)
	docID, err := env.docs.Create(ctx, uid, nil, "agreement.pdf", "p", "application/pdf", 512)
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		events []queue.DocumentAnalyzedEvent
	)
	a := NewAnalyzer(env.docs, env.notifications, 10*time.Millisecond)
	a.publish = func(_ context.Context, ev queue.DocumentAnalyzedEvent) error {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		return nil
	}
	a.Start(2)

	a.Enqueue(Job{DocumentID: docID, UserID: uid, Filename: "agreement.pdf"})
	a.Stop()

	d, err := env.docs.GetForUser(ctx, docID, uid)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, d.Status)
	require.NotNil(t, d.ConfidenceScore)
	assert.InDelta(t, 0.85, *d.ConfidenceScore, 0.001)
	require.NotNil(t, d.KeyPoints)
	assert.Contains(t, *d.KeyPoints, "legal terminology")

	notes, total, err := env.notifications.ListByUser(ctx, uid, false, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, notes, 1)
	assert.Equal(t, "Document Analysis Complete", notes[0].Title)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, docID, events[0].DocumentID)
	assert.Equal(t, "completed", events[0].Status)
}

func TestAnalyzerProcessesBurst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	uid, err := env.users.Create(ctx, "burst", "burst@example.com", "password123", "Burst Owner", nil, model.RoleCitizen, 4)
	require.NoError(t, err)

	a := NewAnalyzer(env.docs, env.notifications, time.Millisecond)
	a.publish = func(context.Context, queue.DocumentAnalyzedEvent) error { return nil }
	a.Start(4)

	const n = 12
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		id, err := env.docs.Create(ctx, uid, nil, "f.pdf", "p", "application/pdf", 1)
		require.NoError(t, err)
		ids = append(ids, id)
		a.Enqueue(Job{DocumentID: id, UserID: uid, Filename: "f.pdf"})
	}
	a.Stop()

	// Every document reached a terminal state.
	for _, id := range ids {
		d, err := env.docs.GetForUser(ctx, id, uid)
		require.NoError(t, err)
		assert.Contains(t, []string{model.DocumentCompleted, model.DocumentFailed}, d.Status)
	}
}

func TestMockResultShape(t *testing.T) {
	res := MockResult()
	assert.Len(t, res.KeyPoints, 4)
	assert.Contains(t, res.Entities, "persons")
	assert.Contains(t, res.Entities, "organizations")
	assert.Contains(t, res.Entities, "dates")
	assert.Contains(t, res.Entities, "locations")
	assert.InDelta(t, 0.85, res.ConfidenceScore, 0.001)
}
