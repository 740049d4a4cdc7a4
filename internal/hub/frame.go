package hub

// Outbound frame types. Every frame carries a "type" discriminant so clients
// can render provenance without re-deriving it.
const (
	FrameTypePresence      = "users"
	FrameTypeGroup         = "group"
	FrameTypePrivate       = "private"
	FrameTypeBroadcast     = "broadcast"
	FrameTypeGroupsChanged = "updateGroups"
)

// PresenceFrame lists the deduplicated set of identities that currently hold
// at least one open connection.
type PresenceFrame struct {
	Type  string   `json:"type"`
	Users []string `json:"users"`
}

type GroupFrame struct {
	Type        string `json:"type"`
	GroupID     int64  `json:"groupId"`
	SenderEmail string `json:"senderEmail"`
	Message     string `json:"message"`
}

// DirectFrame is shared by private and broadcast deliveries. ReceiverEmail
// is null for broadcasts.
type DirectFrame struct {
	Type          string  `json:"type"`
	SenderEmail   string  `json:"senderEmail"`
	ReceiverEmail *string `json:"receiverEmail"`
	Message       string  `json:"message"`
}

// GroupsChangedFrame is a pure invalidation signal instructing recipients to
// refetch their group list. It deliberately carries no group id or name; the
// authoritative record already exists in the store by the time it is sent.
type GroupsChangedFrame struct {
	Type string `json:"type"`
}
