package transport

import (
	"fmt"
	"net"
	"sync"
)

// Default peer names registered by the server façade's constructor (§3).
const (
	PeerEngine      = "engine"
	PeerInterpreter = "interpreter"
)

// Peer is a named UDP destination.
type Peer struct {
	Name string
	Addr *net.UDPAddr
}

// peerRegistry is a mapping from peer name to address. Names are unique;
// registering an existing name overwrites it.
type peerRegistry struct {
	mu    sync.RWMutex
	peers map[string]*net.UDPAddr
}

func newPeerRegistry() *peerRegistry {
	return &peerRegistry{peers: make(map[string]*net.UDPAddr)}
}

// Register adds or replaces a peer. network/address follow net.ResolveUDPAddr
// conventions, e.g. "udp", "127.0.0.1:57110".
func (r *peerRegistry) Register(name, network, address string) (Peer, error) {
	addr, err := net.ResolveUDPAddr(network, address)
	if err != nil {
		return Peer{}, fmt.Errorf("transport: resolving peer %q: %w", name, err)
	}
	r.mu.Lock()
	r.peers[name] = addr
	r.mu.Unlock()
	return Peer{Name: name, Addr: addr}, nil
}

// Lookup resolves a peer by name.
func (r *peerRegistry) Lookup(name string) (*net.UDPAddr, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.peers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPeer, name)
	}
	return addr, nil
}
