package chatfilter_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatward-plugin/chatfilter"
	"chatward-plugin/testutils"
)

func parse(t *testing.T, raw string) chatfilter.PhraseFilter {
	t.Helper()
	f, err := chatfilter.ParsePhrase(raw)
	require.NoError(t, err)
	return f
}

func TestEngine_Evaluate_Phrases(t *testing.T) {
	engine := chatfilter.NewEngine(nil)

	cfg := chatfilter.NewFilterConfig(nil)
	cfg.AddPhrase(parse(t, "spam"))
	cfg.AddPhrase(parse(t, "wts, gold"))

	testCases := []struct {
		name        string
		ev          chatfilter.Event
		wantBlocked bool
		wantReason  string
	}{
		{
			name:        "single phrase hit",
			ev:          testutils.MakeEvent(chatfilter.KindSay, "bob", "this is spam"),
			wantBlocked: true,
			wantReason:  "(Phrase Blocked: 'spam') bob",
		},
		{
			name: "clean message forwards",
			ev:   testutils.MakeEvent(chatfilter.KindSay, "bob", "clean message"),
		},
		{
			name:        "case-insensitive match",
			ev:          testutils.MakeEvent(chatfilter.KindYell, "bob", "SPAM SPAM SPAM"),
			wantBlocked: true,
			wantReason:  "(Phrase Blocked: 'spam') bob",
		},
		{
			name:        "conjunction fires when all sub-phrases occur",
			ev:          testutils.MakeEvent(chatfilter.KindSay, "bob", "WTS shiny GOLD cheap"),
			wantBlocked: true,
			wantReason:  "(Phrase Blocked: 'wts, gold') bob",
		},
		{
			name: "conjunction does not fire on a partial hit",
			ev:   testutils.MakeEvent(chatfilter.KindSay, "bob", "wts epic sword"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := engine.Evaluate(cfg, tc.ev)
			require.Equal(t, tc.wantBlocked, v.Blocked)
			require.Equal(t, tc.wantReason, v.Reason)
		})
	}
}

func TestEngine_Evaluate_MutedSenderBeforePhrases(t *testing.T) {
	engine := chatfilter.NewEngine(nil)

	cfg := chatfilter.NewFilterConfig(nil)
	cfg.AddPhrase(parse(t, "spam"))
	_, err := cfg.MuteSender("Alice")
	require.NoError(t, err)

	// The text also matches a blocked phrase; the sender check must win and
	// the diagnostic must carry the original-case sender name.
	v := engine.Evaluate(cfg, testutils.MakeEvent(chatfilter.KindSay, "aLiCe", "spam spam"))
	require.True(t, v.Blocked)
	require.Equal(t, "(Player Muted) aLiCe", v.Reason)
}

func TestEngine_Evaluate_ChannelScope(t *testing.T) {
	engine := chatfilter.NewEngine(nil)

	cfg := chatfilter.NewFilterConfig(nil)
	cfg.AddPhrase(parse(t, "wts"))
	_, err := cfg.AddChannel("trade")
	require.NoError(t, err)

	t.Run("out-of-scope event is never blocked", func(t *testing.T) {
		v := engine.Evaluate(cfg, testutils.MakeEvent(chatfilter.KindSay, "bob", "wts item"))
		require.False(t, v.Blocked)
	})

	t.Run("muted sender is also exempt out of scope", func(t *testing.T) {
		_, err := cfg.MuteSender("bob")
		require.NoError(t, err)
		v := engine.Evaluate(cfg, testutils.MakeEvent(chatfilter.KindGuild, "bob", "hello"))
		require.False(t, v.Blocked)
	})

	t.Run("hinted channel containing the scope token is filtered", func(t *testing.T) {
		v := engine.Evaluate(cfg, testutils.MakeChannelEvent("carol", "wts item", "2.Trade - General"))
		require.True(t, v.Blocked)
	})

	t.Run("unresolvable kind is out of scope", func(t *testing.T) {
		v := engine.Evaluate(cfg, testutils.MakeEvent(chatfilter.EventKind("loot"), "carol", "wts item"))
		require.False(t, v.Blocked)
	})
}

func TestEngine_Evaluate_EmptyConfig(t *testing.T) {
	engine := chatfilter.NewEngine(nil)
	cfg := chatfilter.NewFilterConfig(nil)

	v := engine.Evaluate(cfg, testutils.MakeEvent(chatfilter.KindSay, "bob", "anything at all"))
	require.False(t, v.Blocked)
	require.Empty(t, v.Reason)
}
