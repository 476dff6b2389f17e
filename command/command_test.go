package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chatward-plugin/chatfilter"
	"chatward-plugin/testutils"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *chatfilter.Manager) {
	t.Helper()
	m := chatfilter.NewManager(testutils.NewMockStore(), nil, nil)
	return NewDispatcher(m, "/cw"), m
}

func TestDispatcher_Handles(t *testing.T) {
	d, _ := newTestDispatcher(t)

	require.True(t, d.Handles("/cw block wts"))
	require.True(t, d.Handles("  /cw  "))
	require.False(t, d.Handles("/cwx block wts"))
	require.False(t, d.Handles("hello /cw"))
	require.False(t, d.Handles("just chatting"))
}

func TestDispatcher_BlockUnblock(t *testing.T) {
	ctx := context.Background()
	d, m := newTestDispatcher(t)

	reply := d.Dispatch(ctx, "Player1", "/cw block WTS, Gold")
	require.Equal(t, "Now blocking 'wts, gold'.", reply)

	reply = d.Dispatch(ctx, "Player1", "/cw block wts , gold")
	require.Equal(t, "'wts, gold' is already blocked.", reply)

	// The sub-phrase alone does not unblock a conjunction.
	reply = d.Dispatch(ctx, "Player1", "/cw unblock wts")
	require.Equal(t, "'wts' is not in the blocked list.", reply)

	reply = d.Dispatch(ctx, "Player1", "/cw unblock WTS, Gold")
	require.Equal(t, "No longer blocking 'wts, gold'.", reply)

	cfg, err := m.GetOrCreate(ctx, "Player1")
	require.NoError(t, err)
	require.Empty(t, cfg.BlockedPhrases)

	reply = d.Dispatch(ctx, "Player1", "/cw block , ,")
	require.Equal(t, "Nothing to block. Give a phrase, or several separated by commas.", reply)
}

func TestDispatcher_MuteUnmute(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDispatcher(t)

	require.Equal(t, "Muted Alice.", d.Dispatch(ctx, "Player1", "/cw mute Alice"))
	require.Equal(t, "ALICE is already muted.", d.Dispatch(ctx, "Player1", "/cw mute ALICE"))
	require.Equal(t, "Unmuted alice.", d.Dispatch(ctx, "Player1", "/cw unmute alice"))
	require.Equal(t, "alice is not muted.", d.Dispatch(ctx, "Player1", "/cw unmute alice"))
	require.Equal(t, "Mute whom? Give a player name.", d.Dispatch(ctx, "Player1", "/cw mute"))
}

func TestDispatcher_Channels(t *testing.T) {
	ctx := context.Background()
	d, m := newTestDispatcher(t)

	reply := d.Dispatch(ctx, "Player1", "/cw channel add Trade")
	require.Equal(t, "Filtering now limited to channels matching 'trade'.", reply)

	reply = d.Dispatch(ctx, "Player1", "/cw channel add trade")
	require.Equal(t, "Channel 'trade' is already in the list.", reply)

	reply = d.Dispatch(ctx, "Player1", "/cw channel remove general")
	require.Equal(t, "Channel 'general' is not in the list.", reply)

	reply = d.Dispatch(ctx, "Player1", "/cw channel reset")
	require.Equal(t, "Channel list cleared; filtering applies everywhere again.", reply)

	cfg, err := m.GetOrCreate(ctx, "Player1")
	require.NoError(t, err)
	require.Empty(t, cfg.Channels)

	reply = d.Dispatch(ctx, "Player1", "/cw channel bogus")
	require.Contains(t, reply, "channel add|remove")
}

func TestDispatcher_DebugAndReset(t *testing.T) {
	ctx := context.Background()
	d, m := newTestDispatcher(t)

	require.Equal(t, "Debug output enabled.", d.Dispatch(ctx, "Player1", "/cw debug"))
	require.Equal(t, "Debug output disabled.", d.Dispatch(ctx, "Player1", "/cw debug"))

	d.Dispatch(ctx, "Player1", "/cw block spam")
	require.Equal(t, "All filters reset to defaults.", d.Dispatch(ctx, "Player1", "/cw reset"))

	cfg, err := m.GetOrCreate(ctx, "Player1")
	require.NoError(t, err)
	require.Empty(t, cfg.BlockedPhrases)
}

func TestDispatcher_Copy(t *testing.T) {
	ctx := context.Background()
	d, m := newTestDispatcher(t)

	require.Equal(t, "You cannot copy filters from yourself.",
		d.Dispatch(ctx, "Player1", "/cw copy PLAYER1"))

	require.Equal(t, "No saved filters found for Stranger.",
		d.Dispatch(ctx, "Player1", "/cw copy Stranger"))

	d.Dispatch(ctx, "Player2", "/cw mute mallory")
	require.Equal(t, "Copied filters from Player2.",
		d.Dispatch(ctx, "Player1", "/cw copy Player2"))

	cfg, err := m.GetOrCreate(ctx, "Player1")
	require.NoError(t, err)
	require.Equal(t, []string{"mallory"}, cfg.MutedSenders)
}

func TestDispatcher_List(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(ctx, "Player1", "/cw list")
	require.Contains(t, reply, "Blocked phrases: (none)")
	require.Contains(t, reply, "Muted players: (none)")
	require.Contains(t, reply, "Channels: (all)")

	d.Dispatch(ctx, "Player1", "/cw block wts, gold")
	d.Dispatch(ctx, "Player1", "/cw mute alice")
	d.Dispatch(ctx, "Player1", "/cw channel add trade")

	reply = d.Dispatch(ctx, "Player1", "/cw list")
	require.Contains(t, reply, "'wts, gold'")
	require.Contains(t, reply, "alice")
	require.Contains(t, reply, "trade")
}

func TestDispatcher_IdentityUnavailable(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDispatcher(t)

	reply := d.Dispatch(ctx, "", "/cw block wts")
	require.Equal(t, "Filters are not available yet: player identity is unknown.", reply)
}

func TestDispatcher_UnknownAndHelp(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDispatcher(t)

	require.Contains(t, d.Dispatch(ctx, "Player1", "/cw"), "Usage:")
	require.Contains(t, d.Dispatch(ctx, "Player1", "/cw help"), "Usage:")
	require.Contains(t, d.Dispatch(ctx, "Player1", "/cw frobnicate"), "Unknown command 'frobnicate'")
}
