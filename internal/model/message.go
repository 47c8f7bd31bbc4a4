package model

import "time"

// Message is one chat message between two users.
//
// Text and Image are both optional, but a message with neither is rejected by
// the service layer. Image holds a URL after upload — the raw base64 payload
// from the client never reaches the database when object storage is
// configured.
//
// This struct is also the payload of the realtime "newMessage" event, so its
// JSON shape is part of the websocket wire format.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
