package hub

import (
	"encoding/json"
	"errors"
)

// ErrMalformedEnvelope marks inbound payloads that match none of the known
// shapes. Malformed envelopes are dropped without closing the connection.
var ErrMalformedEnvelope = errors.New("hub: malformed envelope")

// ControlTypeNewGroup marks the control envelope emitted when a group is
// created, prompting members to refetch their group lists.
const ControlTypeNewGroup = "newGroup"

// Envelope is the inbound wire shape. Chat envelopes carry at most one of
// targetEmail or groupId; the control variant is discriminated by type.
type Envelope struct {
	Type        string   `json:"type,omitempty"`
	Message     string   `json:"message,omitempty"`
	TargetEmail string   `json:"targetEmail,omitempty"`
	GroupID     int64    `json:"groupId,omitempty"`
	Members     []string `json:"members,omitempty"`
}

type envelopeKind int

const (
	kindBroadcast envelopeKind = iota
	kindPrivate
	kindGroup
	kindNewGroup
)

// decodeEnvelope parses and classifies an inbound payload.
func decodeEnvelope(raw []byte) (Envelope, envelopeKind, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, 0, ErrMalformedEnvelope
	}

	kind, err := env.classify()
	if err != nil {
		return Envelope{}, 0, err
	}
	return env, kind, nil
}

func (e Envelope) classify() (envelopeKind, error) {
	if e.Type == ControlTypeNewGroup {
		return kindNewGroup, nil
	}
	if e.Type != "" {
		return 0, ErrMalformedEnvelope
	}
	if e.TargetEmail != "" && e.GroupID != 0 {
		return 0, ErrMalformedEnvelope
	}
	if e.GroupID != 0 {
		return kindGroup, nil
	}
	if e.TargetEmail != "" {
		return kindPrivate, nil
	}
	return kindBroadcast, nil
}
