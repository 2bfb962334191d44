package domain

import "time"

// PlaybackMode tells whether a recording is currently playing back.
// Transient: kept in memory only, never written to the store.
type PlaybackMode string

const (
	PlaybackNotPlaying PlaybackMode = "notPlaying"
	PlaybackPlaying    PlaybackMode = "playing"
)

// Recording is one voice memo. The JSON tags define the on-disk record
// layout; PlaybackMode is deliberately excluded from it.
type Recording struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Duration      float64   `json:"durationSeconds"`
	Transcript    string    `json:"transcript,omitempty"`
	IsTranscribed bool      `json:"isTranscribed"`

	PlaybackMode PlaybackMode `json:"-"`
}

// DefaultTitle is assigned to every freshly captured recording until the
// user renames it.
const DefaultTitle = "New Recording"

// Permission models microphone access. It transitions exactly once, from
// undetermined to allowed or denied, and never reverts.
type Permission string

const (
	PermissionUndetermined Permission = "undetermined"
	PermissionAllowed      Permission = "allowed"
	PermissionDenied       Permission = "denied"
)

// AlertKind identifies the class of a user-facing alert.
type AlertKind string

const (
	AlertPermissionDenied    AlertKind = "permission_denied"
	AlertRecordingFailed     AlertKind = "recording_failed"
	AlertTranscriptionFailed AlertKind = "transcription_failed"
	AlertPlaybackFailed      AlertKind = "playback_failed"
)

// Alert is the single user-facing alert slot. A new alert replaces the
// visible one; dismissing clears it unconditionally.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// SessionInfo describes the active capture session, if any.
type SessionInfo struct {
	FileName  string    `json:"fileName"`
	StartedAt time.Time `json:"startedAt"`
}

// State is the full observable snapshot published after every processed
// event. Rendering layers subscribe to it and dispatch intents back.
type State struct {
	Recordings []Recording `json:"recordings"`
	Permission Permission  `json:"permission"`

	Session        *SessionInfo `json:"session,omitempty"`
	TranscribingID string       `json:"transcribingId,omitempty"`
	ExpandedID     string       `json:"expandedId,omitempty"`

	Alert *Alert `json:"alert,omitempty"`
}

// Recording returns the recording with the given id, or nil.
func (s *State) Recording(id string) *Recording {
	for i := range s.Recordings {
		if s.Recordings[i].ID == id {
			return &s.Recordings[i]
		}
	}
	return nil
}

// PlayingID returns the id of the recording currently playing, if any.
func (s *State) PlayingID() string {
	for i := range s.Recordings {
		if s.Recordings[i].PlaybackMode == PlaybackPlaying {
			return s.Recordings[i].ID
		}
	}
	return ""
}

// Clone deep-copies the snapshot so consumers can hold it across events.
func (s State) Clone() State {
	out := s
	out.Recordings = append([]Recording(nil), s.Recordings...)
	if s.Session != nil {
		session := *s.Session
		out.Session = &session
	}
	if s.Alert != nil {
		alert := *s.Alert
		out.Alert = &alert
	}
	return out
}
