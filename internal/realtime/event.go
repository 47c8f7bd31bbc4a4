// Package realtime implements the presence and notification core: a registry
// of which users currently hold a live websocket connection, typed outbound
// events, and the transport that pushes them.
//
// ARCHITECTURE:
//
//	gateway (HTTP upgrade) → hub (connections, writes) → browser
//	                 ↘ presence (registry + broadcast decisions) ↗
//
// The registry and presence logic never touch a websocket directly — they
// talk to the transport through the small Sender interface, which is what
// makes them testable with an in-memory fake.
package realtime

import "github.com/sakif/pingme/internal/model"

// EventName tags an outbound event. The string values are the wire-level
// event names the frontend switches on.
type EventName string

const (
	// EventOnlineUsers announces the full set of currently-online user IDs.
	// Receivers must treat the payload as a set — order carries no meaning.
	EventOnlineUsers EventName = "getOnlineUsers"

	// EventNewMessage delivers one chat message to its recipient.
	EventNewMessage EventName = "newMessage"
)

// Event is the envelope for every server→client push. Modelling the two
// event kinds as variants of one type (rather than loose name/payload pairs
// scattered through the code) keeps the outbound wire format in one place.
//
// Wire shape: {"event":"getOnlineUsers","data":["507f...","6123..."]}
type Event struct {
	Name EventName `json:"event"`
	Data any       `json:"data"`
}

// OnlineUsers builds the membership-change broadcast.
func OnlineUsers(userIDs []string) Event {
	if userIDs == nil {
		// Marshal as [] rather than null.
		userIDs = []string{}
	}
	return Event{Name: EventOnlineUsers, Data: userIDs}
}

// NewMessage builds the per-recipient message notification. The payload is
// the full message record, same JSON shape as the REST API returns.
func NewMessage(msg *model.Message) Event {
	return Event{Name: EventNewMessage, Data: msg}
}
