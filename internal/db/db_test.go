package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"tutor/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := OpenSessionDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestTurnsKeepInsertionOrder(t *testing.T) {
	conn := openTestDB(t)
	sid, err := CreateSession(conn, 100)
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	// Same content twice and a timestamp going backwards: no dedup, no reordering.
	inputs := []struct {
		role    string
		content string
		at      int64
	}{
		{models.RoleUser, "hello", 10},
		{models.RoleAssistant, "hi!", 5},
		{models.RoleUser, "hello", 20},
		{models.RoleAssistant, "hi!", 21},
	}
	for _, in := range inputs {
		_, err := InsertTurn(conn, sid, in.role, in.content, in.at)
		require.NoError(t, err)
	}

	turns, err := GetTurns(conn, sid)
	require.NoError(t, err)
	require.Len(t, turns, len(inputs))
	for i, in := range inputs {
		require.Equal(t, in.role, turns[i].Role)
		require.Equal(t, in.content, turns[i].Content)
		require.Equal(t, in.at, turns[i].CreatedAtUnix)
	}

	count, err := CountTurns(conn, sid)
	require.NoError(t, err)
	require.Equal(t, 4, count)
}

func TestClearTurnsOnlyAffectsSession(t *testing.T) {
	conn := openTestDB(t)
	a, err := CreateSession(conn, 1)
	require.NoError(t, err)
	b, err := CreateSession(conn, 1)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	for i := 0; i < 3; i++ {
		_, err := InsertTurn(conn, a, models.RoleUser, fmt.Sprintf("a%d", i), 1)
		require.NoError(t, err)
	}
	_, err = InsertTurn(conn, b, models.RoleUser, "b0", 1)
	require.NoError(t, err)

	require.NoError(t, ClearTurns(conn, a))

	turns, err := GetTurns(conn, a)
	require.NoError(t, err)
	require.Empty(t, turns)

	count, err := CountTurns(conn, b)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = InsertTurn(conn, a, models.RoleUser, "after clear", 2)
	require.NoError(t, err)
	turns, err = GetTurns(conn, a)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	require.Equal(t, "after clear", turns[0].Content)
}

func TestInsertTurnRejectsUnknownRole(t *testing.T) {
	conn := openTestDB(t)
	sid, err := CreateSession(conn, 1)
	require.NoError(t, err)

	_, err = InsertTurn(conn, sid, models.RoleSystem, "nope", 1)
	require.Error(t, err)
}

func TestInsertTurnRequiresSession(t *testing.T) {
	conn := openTestDB(t)
	_, err := InsertTurn(conn, "missing", models.RoleUser, "orphan", 1)
	require.Error(t, err)
}

func TestSeparateDatabasesDoNotShareState(t *testing.T) {
	first := openTestDB(t)
	sid, err := CreateSession(first, 1)
	require.NoError(t, err)
	_, err = InsertTurn(first, sid, models.RoleUser, "x", 1)
	require.NoError(t, err)

	second := openTestDB(t)
	count, err := CountTurns(second, sid)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestInsertReplyKeepsModeAndKind(t *testing.T) {
	conn := openTestDB(t)
	sid, err := CreateSession(conn, 1)
	require.NoError(t, err)

	_, err = InsertTurn(conn, sid, models.RoleUser, "hello", 1)
	require.NoError(t, err)
	_, err = InsertReply(conn, sid, "warming up", "Grammar Checker", "transient_unavailable", 2)
	require.NoError(t, err)

	turns, err := GetTurns(conn, sid)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	require.Empty(t, turns[0].Mode)
	require.Empty(t, turns[0].Kind)
	require.Equal(t, models.RoleAssistant, turns[1].Role)
	require.Equal(t, "Grammar Checker", turns[1].Mode)
	require.Equal(t, "transient_unavailable", turns[1].Kind)
}
