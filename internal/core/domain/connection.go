package domain

// ConnID identifies one live websocket connection. Assigned by the transport
// on accept; opaque to clients.
type ConnID string

// PresenceEntry is one row of the online-users listing.
type PresenceEntry struct {
	ConnID      ConnID `json:"id"`
	DisplayName string `json:"display_name"`
}
