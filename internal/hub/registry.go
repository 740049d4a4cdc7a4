package hub

import "sort"

// registry maps each identity to its set of open connections. It is owned
// by the hub's Run loop and must never be touched from another goroutine.
type registry struct {
	entries map[string]map[*Client]struct{}
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]map[*Client]struct{}),
	}
}

// add registers a connection under its identity. Idempotent per client;
// multiple simultaneous connections per identity are supported.
func (r *registry) add(c *Client) bool {
	set, ok := r.entries[c.identity]
	if !ok {
		set = make(map[*Client]struct{})
		r.entries[c.identity] = set
	}
	if _, exists := set[c]; exists {
		return false
	}
	set[c] = struct{}{}
	return true
}

// remove drops the connection from its identity's entry, and the entry
// itself once the set empties. Returns false if the client was not present,
// making repeat unregistration a no-op.
func (r *registry) remove(c *Client) bool {
	set, ok := r.entries[c.identity]
	if !ok {
		return false
	}
	if _, exists := set[c]; !exists {
		return false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.entries, c.identity)
	}
	return true
}

func (r *registry) connectionsFor(identity string) map[*Client]struct{} {
	return r.entries[identity]
}

// online returns the deduplicated identity set, sorted so every presence
// frame lists users in a stable order.
func (r *registry) online() []string {
	users := make([]string, 0, len(r.entries))
	for identity := range r.entries {
		users = append(users, identity)
	}
	sort.Strings(users)
	return users
}

func (r *registry) each(fn func(*Client)) {
	for _, set := range r.entries {
		for c := range set {
			fn(c)
		}
	}
}

func (r *registry) connectionCount() int {
	n := 0
	for _, set := range r.entries {
		n += len(set)
	}
	return n
}
