package editor

import "time"

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeNeutral NoticeKind = "neutral"
	NoticeError   NoticeKind = "error"
)

// Notice is a short-lived status line shown to the operator.
type Notice struct {
	Kind NoticeKind
	Text string
	At   time.Time
}

func (n Notice) IsZero() bool { return n.Text == "" }

// expired reports whether n should no longer be shown at now.
func (n Notice) expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(n.At) >= ttl
}
