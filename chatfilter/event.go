package chatfilter

// EventKind identifies which chat surface a message arrived on.
type EventKind string

const (
	KindSay           EventKind = "say"
	KindYell          EventKind = "yell"
	KindGuild         EventKind = "guild"
	KindOfficer       EventKind = "officer"
	KindParty         EventKind = "party"
	KindPartyLeader   EventKind = "party_leader"
	KindRaid          EventKind = "raid"
	KindRaidLeader    EventKind = "raid_leader"
	KindWhisper       EventKind = "whisper"
	KindWhisperInform EventKind = "whisper_inform"
	KindEmote         EventKind = "emote"
	KindTextEmote     EventKind = "text_emote"
	KindChannel       EventKind = "channel"
)

// Event is one incoming chat message as delivered by the host.
type Event struct {
	Kind    EventKind `json:"type"`
	Text    string    `json:"text"`
	Sender  string    `json:"sender"`
	Channel string    `json:"channel,omitempty"` // raw channel name, set for numbered channels
}

// kindChannels maps event kinds to their conceptual channel token. Leader and
// plain variants share a token, as do the two whisper and the two emote
// directions. KindChannel is absent on purpose: numbered channels get their
// token from the raw channel hint on the event.
var kindChannels = map[EventKind]string{
	KindSay:           "say",
	KindYell:          "yell",
	KindGuild:         "guild",
	KindOfficer:       "officer",
	KindParty:         "party",
	KindPartyLeader:   "party",
	KindRaid:          "raid",
	KindRaidLeader:    "raid",
	KindWhisper:       "whisper",
	KindWhisperInform: "whisper",
	KindEmote:         "emote",
	KindTextEmote:     "emote",
}

// ResolveChannel returns the channel token an event compares against scope
// entries. A non-empty raw hint always wins and is returned lowercased;
// otherwise the kind's static token applies. The second result is false when
// the event resolves to no channel at all.
func ResolveChannel(kind EventKind, rawHint string) (string, bool) {
	if rawHint != "" {
		return Normalize(rawHint), true
	}
	token, ok := kindChannels[kind]
	return token, ok
}
