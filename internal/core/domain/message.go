package domain

import "time"

// Message is one persisted chat message. Append-only, immutable once created.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// FileMeta describes an already-uploaded file. The blob itself lives in the
// upload store; only metadata moves through the hub.
type FileMeta struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
}
