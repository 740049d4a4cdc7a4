package hub

import "context"

// delivery is one routed frame plus the identities that should receive it.
// A nil audience means every open connection.
type delivery struct {
	frame    interface{}
	audience []string
}

// Hub owns the connection registry and fans routed frames out to live
// connections. All registry access happens on the Run loop goroutine;
// connection handlers talk to it exclusively through channels, so a route
// can never observe a half-updated registry.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	queries    chan func(*registry)
	resolver   GroupResolver
}

func NewHub(resolver GroupResolver) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery),
		queries:    make(chan func(*registry)),
		resolver:   resolver,
	}
}

func (h *Hub) Run() {
	reg := newRegistry()
	for {
		select {
		case client := <-h.register:
			if reg.add(client) {
				incConnections()
				h.broadcastPresence(reg)
			}

		case client := <-h.unregister:
			if reg.remove(client) {
				close(client.frames)
				decConnections()
				h.broadcastPresence(reg)
			}

		case d := <-h.deliveries:
			h.deliver(reg, d)

		case fn := <-h.queries:
			fn(reg)
		}
	}
}

// Register adds the connection under its identity and triggers a presence
// broadcast to every open connection.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes the connection. Safe to call more than once; repeat
// calls are no-ops and trigger no extra presence broadcast.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Online reports the deduplicated set of identities with at least one open
// connection. Because the query executes on the Run loop it also acts as a
// barrier: every earlier register/unregister has taken effect.
func (h *Hub) Online() []string {
	res := make(chan []string, 1)
	h.queries <- func(reg *registry) {
		res <- reg.online()
	}
	return <-res
}

// Route classifies the envelope, computes the delivery set and hands the
// resulting frame to the Run loop for fan-out. The membership lookup for
// group messages runs on the caller's goroutine so a slow store never
// stalls the registry. Routing is fire-and-forget: the returned error is
// for the caller's log only, the sender gets no failure frame.
func (h *Hub) Route(ctx context.Context, sender string, env Envelope) error {
	kind, err := env.classify()
	if err != nil {
		return err
	}

	switch kind {
	case kindNewGroup:
		audience := append([]string{sender}, env.Members...)
		h.deliveries <- delivery{
			frame:    GroupsChangedFrame{Type: FrameTypeGroupsChanged},
			audience: audience,
		}

	case kindGroup:
		members, err := h.resolver.MembersOf(ctx, env.GroupID)
		if err != nil {
			return &ResolutionError{GroupID: env.GroupID, Err: err}
		}
		if members == nil {
			members = []string{}
		}
		h.deliveries <- delivery{
			frame: GroupFrame{
				Type:        FrameTypeGroup,
				GroupID:     env.GroupID,
				SenderEmail: sender,
				Message:     env.Message,
			},
			audience: members,
		}

	case kindPrivate:
		receiver := env.TargetEmail
		h.deliveries <- delivery{
			frame: DirectFrame{
				Type:          FrameTypePrivate,
				SenderEmail:   sender,
				ReceiverEmail: &receiver,
				Message:       env.Message,
			},
			audience: []string{sender, receiver},
		}

	default:
		h.deliveries <- delivery{
			frame: DirectFrame{
				Type:        FrameTypeBroadcast,
				SenderEmail: sender,
				Message:     env.Message,
			},
		}
	}

	return nil
}

func (h *Hub) deliver(reg *registry, d delivery) {
	targets := make(map[*Client]struct{})
	if d.audience == nil {
		reg.each(func(c *Client) {
			targets[c] = struct{}{}
		})
	} else {
		for _, identity := range d.audience {
			for c := range reg.connectionsFor(identity) {
				targets[c] = struct{}{}
			}
		}
	}

	delivered := 0
	var stalled []*Client
	for c := range targets {
		select {
		case c.frames <- d.frame:
			delivered++
		default:
			stalled = append(stalled, c)
		}
	}
	if delivered > 0 {
		addDelivered(delivered)
	}
	if len(stalled) > 0 {
		addDropped(len(stalled))
		h.evict(reg, stalled)
		h.broadcastPresence(reg)
	}
}

// broadcastPresence pushes the current roster to every connection. A peer
// too backed up to take the frame is evicted, which changes the roster, so
// the broadcast repeats until it lands everywhere.
func (h *Hub) broadcastPresence(reg *registry) {
	for {
		frame := PresenceFrame{Type: FrameTypePresence, Users: reg.online()}
		setOnlineIdentities(len(frame.Users))

		var stalled []*Client
		reg.each(func(c *Client) {
			select {
			case c.frames <- frame:
			default:
				stalled = append(stalled, c)
			}
		})
		if len(stalled) == 0 {
			return
		}
		addDropped(len(stalled))
		h.evict(reg, stalled)
	}
}

func (h *Hub) evict(reg *registry, clients []*Client) {
	for _, c := range clients {
		if reg.remove(c) {
			close(c.frames)
			decConnections()
		}
	}
}
