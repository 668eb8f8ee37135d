package sync

import "time"

const (
	EventPageSaved    = "page.saved"
	EventPageAnalyzed = "page.analyzed"
)

// PageEvent is broadcast to every hub client when a stored page changes.
type PageEvent struct {
	Type     string    `json:"type"` // "page.saved" or "page.analyzed"
	PageID   string    `json:"page_id"`
	Elements int       `json:"elements"`
	At       time.Time `json:"at"`
}

// WelcomeFrame is the first line every hub client receives. Stats include
// the client being welcomed.
type WelcomeFrame struct {
	Type      string   `json:"type"` // always "welcome"
	Transport string   `json:"transport"`
	Events    []string `json:"events"`
	Stats
}

func newWelcomeFrame(transport string, st Stats) WelcomeFrame {
	return WelcomeFrame{
		Type:      "welcome",
		Transport: transport,
		Events:    []string{EventPageSaved, EventPageAnalyzed},
		Stats:     st,
	}
}

func NewPageEvent(kind, pageID string, elements int) PageEvent {
	return PageEvent{Type: kind, PageID: pageID, Elements: elements, At: time.Now().UTC()}
}
