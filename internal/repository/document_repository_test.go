package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyayamitra/nyaya-mitra/internal/model"
)

func TestDocumentAnalysisTransition(t *testing.T) {
	users := newTestDB(t)
	docs := NewDocumentRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "docs@example.com")

	id, err := docs.Create(ctx, uid, nil, "contract.pdf", "public/uploads/documents/x.pdf", "application/pdf", 2048)
	require.NoError(t, err)

	d, err := docs.GetForUser(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentProcessing, d.Status)
	assert.Nil(t, d.Summary)

	err = docs.Complete(ctx, id, AnalysisUpdate{
		Summary:         "A short summary",
		KeyPoints:       `["a","b"]`,
		Entities:        `{"persons":[]}`,
		LegalReferences: `["Section 420 IPC"]`,
		Result:          `{"summary":"A short summary"}`,
		Confidence:      0.85,
		ProcessingTime:  2.1,
	})
	require.NoError(t, err)

	d, err = docs.GetForUser(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, d.Status)
	require.NotNil(t, d.Summary)
	assert.Equal(t, "A short summary", *d.Summary)
	require.NotNil(t, d.ConfidenceScore)
	assert.InDelta(t, 0.85, *d.ConfidenceScore, 0.001)
}

func TestDocumentOwnershipIsEnforced(t *testing.T) {
	users := newTestDB(t)
	docs := NewDocumentRepo(users.DB)
	ctx := context.Background()

	owner := createTestUser(t, users, "owner@example.com")
	other := createTestUser(t, users, "other@example.com")

	id, err := docs.Create(ctx, owner, nil, "mine.pdf", "p", "application/pdf", 1)
	require.NoError(t, err)

	_, err = docs.GetForUser(ctx, id, other)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentListFilters(t *testing.T) {
	users := newTestDB(t)
	docs := NewDocumentRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "list@example.com")

	a, err := docs.Create(ctx, uid, nil, "a.pdf", "p1", "application/pdf", 1)
	require.NoError(t, err)
	_, err = docs.Create(ctx, uid, nil, "b.pdf", "p2", "application/pdf", 1)
	require.NoError(t, err)
	require.NoError(t, docs.Fail(ctx, a, "boom"))

	failed, total, err := docs.ListByUser(ctx, uid, model.DocumentFailed, 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, failed, 1)
	assert.Equal(t, "a.pdf", failed[0].OriginalFilename)
	require.NotNil(t, failed[0].ErrorMessage)
	assert.Equal(t, "boom", *failed[0].ErrorMessage)

	all, total, err := docs.ListByUser(ctx, uid, "", 0, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)
}

func TestDocumentDelete(t *testing.T) {
	users := newTestDB(t)
	docs := NewDocumentRepo(users.DB)
	ctx := context.Background()

	uid := createTestUser(t, users, "del@example.com")
	id, err := docs.Create(ctx, uid, nil, "gone.pdf", "p", "application/pdf", 1)
	require.NoError(t, err)

	require.NoError(t, docs.Delete(ctx, id))
	assert.ErrorIs(t, docs.Delete(ctx, id), ErrNotFound)
}
