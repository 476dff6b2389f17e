// testutils/event.go
package testutils

import "chatward-plugin/chatfilter"

// MakeEvent is a shared helper to build a chat event for tests.
func MakeEvent(kind chatfilter.EventKind, sender, text string) chatfilter.Event {
	return chatfilter.Event{Kind: kind, Sender: sender, Text: text}
}

// MakeChannelEvent builds a numbered-channel event carrying a raw channel
// name hint.
func MakeChannelEvent(sender, text, channel string) chatfilter.Event {
	return chatfilter.Event{Kind: chatfilter.KindChannel, Sender: sender, Text: text, Channel: channel}
}
