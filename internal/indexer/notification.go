package indexer

import (
	"fmt"
	"strings"
)

// NotificationKind classifies a semantic notification.
type NotificationKind int

const (
	KindPotentiallyHarmful NotificationKind = iota
	KindInfo
)

func (k NotificationKind) String() string {
	switch k {
	case KindPotentiallyHarmful:
		return "potentially_harmful"
	case KindInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k NotificationKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *NotificationKind) UnmarshalText(data []byte) error {
	switch strings.ToLower(string(data)) {
	case "potentially_harmful":
		*k = KindPotentiallyHarmful
	case "info":
		*k = KindInfo
	default:
		return fmt.Errorf("unknown notification kind %q", string(data))
	}
	return nil
}

// Notification is a semantic finding raised while indexing. Address is the
// decimal byte offset of the call site.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Address string           `json:"address"`
}

// WatchEntry names a callee whose calls raise a notification.
type WatchEntry struct {
	Name    string `json:"name" toml:"name" yaml:"name"`
	Message string `json:"message" toml:"message" yaml:"message"`
}

// DefaultWatchList is used when no watch-list is configured.
var DefaultWatchList = []WatchEntry{
	{Name: "alert", Message: "alert is detected at position"},
}
