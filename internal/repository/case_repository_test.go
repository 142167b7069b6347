package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseRepoCreate_DuplicateNumber(t *testing.T) {
	users := newTestDB(t)
	cases := NewCaseRepo(users.DB)
	uid := createTestUser(t, users, "cases@example.com")
	ctx := context.Background()

	_, err := cases.Create(ctx, uid, "NYM-2026-0001", "First", "First case", "civil", "medium")
	require.NoError(t, err)

	// A colliding case number surfaces as the retryable sentinel, not a raw
	// driver error.
	_, err = cases.Create(ctx, uid, "NYM-2026-0001", "Second", "Second case", "civil", "medium")
	assert.ErrorIs(t, err, ErrDuplicate)

	// A fresh number succeeds.
	id, err := cases.Create(ctx, uid, "NYM-2026-0002", "Second", "Second case", "civil", "medium")
	require.NoError(t, err)
	assert.NotZero(t, id)
}
