package model

import "time"

// ConnectionStatus is the state of the event source
type ConnectionStatus int

const (
	StatusWaiting ConnectionStatus = iota
	StatusConnected
	StatusDisconnected
	StatusReplay
)

func (s ConnectionStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusConnected:
		return "connected"
	case StatusDisconnected:
		return "disconnected"
	case StatusReplay:
		return "replay"
	default:
		return "unknown"
	}
}

// Connection describes the application currently reporting events
type Connection struct {
	Status  ConnectionStatus
	Session string
	Name    string
	Version string
	Theme   string
	Since   time.Time
}

// Label renders the application identity, e.g. "todos 0.14.0"
func (c Connection) Label() string {
	switch {
	case c.Name == "":
		return "unknown application"
	case c.Version == "":
		return c.Name
	default:
		return c.Name + " " + c.Version
	}
}

// SameApplication reports whether name and version identify the same
// application as c.
func (c Connection) SameApplication(name, version string) bool {
	return c.Name == name && c.Version == version
}
