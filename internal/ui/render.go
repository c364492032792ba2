package ui

import "github.com/coconutbird/uwpdumper/internal/protocol"

// SessionRenderer adapts the Logger to the controller loop's renderer
// surface: packets become leveled log lines, progress pairs drive the
// in-place bar.
type SessionRenderer struct {
	Log *Logger
}

func (r *SessionRenderer) Packet(pkt protocol.Packet) {
	switch pkt.ID {
	case protocol.IDComplete:
		r.Log.Success("Dump complete: %s", pkt.Text)
		return
	case protocol.IDFatal:
		r.Log.Error("%s", pkt.Text)
		return
	case protocol.IDReady:
		// Handshake packets carry no text worth showing.
		return
	}
	switch pkt.Level {
	case protocol.LevelSuccess:
		r.Log.Success("%s", pkt.Text)
	case protocol.LevelWarning:
		r.Log.Warn("%s", pkt.Text)
	case protocol.LevelError:
		r.Log.Error("%s", pkt.Text)
	default:
		r.Log.Info("%s", pkt.Text)
	}
}

func (r *SessionRenderer) Progress(current, total uint32) {
	r.Log.SetProgress(current, total)
}
