package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chatward-plugin/chatfilter"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestBadgerStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cfg := chatfilter.NewFilterConfig(nil)
	single, err := chatfilter.ParsePhrase("wts")
	require.NoError(t, err)
	conj, err := chatfilter.ParsePhrase("wts, gold")
	require.NoError(t, err)
	cfg.AddPhrase(single)
	cfg.AddPhrase(conj)
	_, err = cfg.MuteSender("Alice")
	require.NoError(t, err)
	_, err = cfg.AddChannel("Trade")
	require.NoError(t, err)
	cfg.Debug = true

	require.NoError(t, s.SaveConfig(ctx, "Player1", cfg))

	loaded, found, err := s.LoadConfig(ctx, "Player1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, cfg, loaded)
}

func TestBadgerStore_MissingKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, found, err := s.LoadConfig(ctx, "Nobody")
	require.NoError(t, err)
	require.False(t, found)
}

func TestBadgerStore_KeysAreCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cfg := chatfilter.NewFilterConfig(nil)
	require.NoError(t, s.SaveConfig(ctx, "Player1", cfg))

	_, found, err := s.LoadConfig(ctx, "player1")
	require.NoError(t, err)
	require.False(t, found, "record keys are exact, not case-folded")
}

func TestBadgerStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := chatfilter.NewFilterConfig(nil)
	_, err := first.MuteSender("alice")
	require.NoError(t, err)
	require.NoError(t, s.SaveConfig(ctx, "Player1", first))

	second := chatfilter.NewFilterConfig(nil)
	require.NoError(t, s.SaveConfig(ctx, "Player1", second))

	loaded, found, err := s.LoadConfig(ctx, "Player1")
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, loaded.MutedSenders)
}
