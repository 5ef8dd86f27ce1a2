package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetrov/infracopilot/backend/internal/model/chat"
)

func TestGetOrCreate(t *testing.T) {
	store := NewStore(time.Hour, 10)

	t.Run("unseen id returns empty session", func(t *testing.T) {
		sess := store.GetOrCreate("fresh")
		require.NotNil(t, sess)
		assert.Equal(t, "fresh", sess.ID)
		assert.Empty(t, sess.History)
		assert.False(t, sess.LastActivity.IsZero())
	})

	t.Run("second call returns same history", func(t *testing.T) {
		sess := store.GetOrCreate("repeat")
		store.AppendTurn(sess, chat.RoleUser, "hello")
		firstActivity := sess.LastActivity

		again := store.GetOrCreate("repeat")
		assert.Same(t, sess, again)
		require.Len(t, again.History, 1)
		assert.Equal(t, "hello", again.History[0].Text)
		assert.False(t, again.LastActivity.Before(firstActivity))
	})
}

func TestAppendTurnBoundsHistory(t *testing.T) {
	const maxTurns = 3
	store := NewStore(time.Hour, maxTurns)
	sess := store.GetOrCreate("bounded")

	for i := 0; i < 20; i++ {
		store.AppendTurn(sess, chat.RoleUser, fmt.Sprintf("q%d", i))
		store.AppendTurn(sess, chat.RoleModel, fmt.Sprintf("a%d", i))
	}

	require.Len(t, sess.History, maxTurns*2)
	// Oldest entries dropped first.
	assert.Equal(t, "q17", sess.History[0].Text)
	assert.Equal(t, "a19", sess.History[len(sess.History)-1].Text)
}

func TestExpiredSessionPurgedOnAnyLookup(t *testing.T) {
	now := time.Now().UTC()
	store := NewStore(30*time.Minute, 10)
	store.now = func() time.Time { return now }

	stale := store.GetOrCreate("stale")
	store.AppendTurn(stale, chat.RoleUser, "old message")

	// Advance past the idle window and touch a different id.
	now = now.Add(31 * time.Minute)
	store.GetOrCreate("other")

	assert.Equal(t, 1, store.Len())
	replacement := store.GetOrCreate("stale")
	assert.Empty(t, replacement.History)
}

func TestActiveSessionSurvivesPurge(t *testing.T) {
	now := time.Now().UTC()
	store := NewStore(30*time.Minute, 10)
	store.now = func() time.Time { return now }

	sess := store.GetOrCreate("active")
	store.AppendTurn(sess, chat.RoleUser, "ping")

	now = now.Add(29 * time.Minute)
	again := store.GetOrCreate("active")
	require.Len(t, again.History, 1)
}
