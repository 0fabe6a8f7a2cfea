package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/datastore"
	"github.com/stretchr/testify/require"
)

func TestCommandHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(context.Background(), path)
	require.NoError(t, err)

	history, err := s.CommandHistory("C1")
	require.NoError(t, err)
	require.Empty(t, history)

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := range commandHistoryLimit + 5 {
		require.NoError(t, s.AppendCommand("C1", CommandRecord{
			ChannelID: "C1",
			UserID:    "U1",
			Command:   fmt.Sprintf("cmd%d", i),
			Args:      []string{"a"},
			Datetime:  now,
		}))
	}
	require.NoError(t, s.AppendCommand("C2", CommandRecord{ChannelID: "C2", Command: "other"}))

	history, err = s.CommandHistory("C1")
	require.NoError(t, err)
	require.Len(t, history, commandHistoryLimit)
	require.Equal(t, "cmd5", history[0].Command)
	require.Equal(t, fmt.Sprintf("cmd%d", commandHistoryLimit+4), history[len(history)-1].Command)

	other, err := s.CommandHistory("C2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	require.NoError(t, s.Close())
}

func TestHistorySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.AppendCommand("C1", CommandRecord{Command: "echo", Args: []string{"hi"}}))
	require.NoError(t, s.Close())

	s, err = New(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	history, err := s.CommandHistory("C1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "echo", history[0].Command)
	require.Equal(t, []string{"hi"}, history[0].Args)
}

func TestCloseAfterParentCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	ctx, cancel := context.WithCancel(context.Background())

	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.AppendCommand("C1", CommandRecord{Command: "roll", Args: []string{"d20"}}))

	cancel()
	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	require.ErrorIs(t, s.AppendCommand("C1", CommandRecord{Command: "late"}), datastore.ErrClosed)

	s, err = New(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	history, err := s.CommandHistory("C1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "roll", history[0].Command)
}

func TestCloseWithLiveParent(t *testing.T) {
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()
	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
}
