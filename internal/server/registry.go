package server

import "sync"

// Registry is the in-memory presence index mapping an authenticated user id
// to its active connection. It holds no persistence or network
// responsibility and is shared by all connection handlers, so every
// operation runs under one lock. At most one connection is tracked per
// user: a second registration for the same id replaces the first.
type Registry struct {
	mu       sync.Mutex
	byUser   map[int]*Client
	byClient map[*Client]int
}

func NewRegistry() *Registry {
	return &Registry{
		byUser:   make(map[int]*Client),
		byClient: make(map[*Client]int),
	}
}

// Register installs the mapping for userId, replacing any existing entry.
// The superseded client is returned so the caller can decide whether to
// close it.
func (r *Registry) Register(userId int, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.byUser[userId]
	if old == c {
		return nil
	}
	if old != nil {
		delete(r.byClient, old)
	}

	r.byUser[userId] = c
	r.byClient[c] = userId

	return old
}

// Lookup returns the active connection for userId, if any.
func (r *Registry) Lookup(userId int) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byUser[userId]
	return c, ok
}

// UnregisterByClient removes the mapping owned by c and returns the user id
// it was registered under. A client that was never registered, or whose
// entry was already replaced by a newer connection, is a no-op.
func (r *Registry) UnregisterByClient(c *Client) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId, ok := r.byClient[c]
	if !ok {
		return 0, false
	}

	delete(r.byClient, c)
	if r.byUser[userId] == c {
		delete(r.byUser, userId)
	}

	return userId, true
}

// Clients returns a snapshot of all registered connections.
func (r *Registry) Clients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make([]*Client, 0, len(r.byClient))
	for c := range r.byClient {
		clients = append(clients, c)
	}

	return clients
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.byClient)
}
