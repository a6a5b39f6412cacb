package endpoint

import (
	"encoding/json"
	"net"
	"sort"
	"strconv"
	"strings"
)

// Pair is one concrete host:port combination explicitly declared for a
// finding. A bare host line contributes no Pair.
type Pair struct {
	// Host is the host address exactly as it appeared (IPv4, IPv6 without
	// brackets, or hostname).
	Host string `json:"host"`

	// Port is the declared port, in the range 1-65535.
	Port int `json:"port"`
}

// String formats the pair as host:port, bracketing IPv6 literals.
func (p Pair) String() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Set is the canonical parsed representation of a finding's affected network
// locations. It is immutable once built; all accessors return copies.
//
// Equality for grouping purposes is defined over the pair set, not over hosts
// and ports independently: two findings with the same hosts and ports but
// different pairings are not equivalent.
type Set struct {
	hosts []string
	ports map[int]struct{}
	pairs map[Pair]struct{}

	// sig is the canonical pair signature, computed once at build time.
	sig string
}

// NewSet builds a Set from hosts, ports, and explicit pairs.
//
// Duplicate hosts are coalesced at their first position, ports are
// deduplicated, and any host or port referenced by a pair is added to the
// respective collection so the pair set is always a subset of hosts x ports.
// Ports outside 1-65535 are dropped.
func NewSet(hosts []string, ports []int, pairs []Pair) *Set {
	b := newSetBuilder()
	for _, h := range hosts {
		b.addHost(h)
	}
	for _, p := range ports {
		b.addPort(p)
	}
	for _, p := range pairs {
		b.addPair(p.Host, p.Port)
	}
	return b.build()
}

// Hosts returns the host addresses in first-seen order.
func (s *Set) Hosts() []string {
	out := make([]string, len(s.hosts))
	copy(out, s.hosts)
	return out
}

// Ports returns the declared ports sorted ascending.
func (s *Set) Ports() []int {
	out := make([]int, 0, len(s.ports))
	for p := range s.ports {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Pairs returns the explicit host:port pairs sorted by host, then port.
func (s *Set) Pairs() []Pair {
	out := make([]Pair, 0, len(s.pairs))
	for p := range s.pairs {
		out = append(out, p)
	}
	sortPairs(out)
	return out
}

// HostCount returns the number of unique hosts.
func (s *Set) HostCount() int { return len(s.hosts) }

// PairCount returns the number of explicit host:port pairs.
func (s *Set) PairCount() int { return len(s.pairs) }

// Empty reports whether the set contains no hosts and no pairs.
func (s *Set) Empty() bool { return len(s.hosts) == 0 && len(s.pairs) == 0 }

// HasPair reports whether the exact host:port pair was declared.
func (s *Set) HasPair(p Pair) bool {
	_, ok := s.pairs[p]
	return ok
}

// HasHost reports whether the host appears in the set.
func (s *Set) HasHost(host string) bool {
	for _, h := range s.hosts {
		if h == host {
			return true
		}
	}
	return false
}

// Signature returns the canonical, order-independent identity of the pair
// set: the sorted pairs joined with commas, each formatted as host:port with
// IPv6 literals bracketed. Two sets have the same signature exactly when
// their pair sets are equal. An empty pair set yields the empty string.
func (s *Set) Signature() string { return s.sig }

// Equal reports whether both sets declare exactly the same pair set.
func (s *Set) Equal(other *Set) bool {
	if other == nil {
		return false
	}
	return s.sig == other.sig
}

// ContainsAll reports whether every pair of other is also declared in s.
func (s *Set) ContainsAll(other *Set) bool {
	if other == nil {
		return true
	}
	if len(other.pairs) > len(s.pairs) {
		return false
	}
	for p := range other.pairs {
		if _, ok := s.pairs[p]; !ok {
			return false
		}
	}
	return true
}

// setJSON is the wire form of a Set: canonical ordering so encoding is
// deterministic and round-trips through the Redis cache.
type setJSON struct {
	Hosts []string `json:"hosts"`
	Ports []int    `json:"ports"`
	Pairs []Pair   `json:"pairs"`
}

// MarshalJSON implements json.Marshaler.
func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(setJSON{
		Hosts: s.Hosts(),
		Ports: s.Ports(),
		Pairs: s.Pairs(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Set) UnmarshalJSON(data []byte) error {
	var w setJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = *NewSet(w.Hosts, w.Ports, w.Pairs)
	return nil
}

// setBuilder accumulates parse output before freezing it into a Set.
type setBuilder struct {
	hosts     []string
	hostIndex map[string]struct{}
	ports     map[int]struct{}
	pairs     map[Pair]struct{}
}

func newSetBuilder() *setBuilder {
	return &setBuilder{
		hostIndex: make(map[string]struct{}),
		ports:     make(map[int]struct{}),
		pairs:     make(map[Pair]struct{}),
	}
}

// addHost records a host at its first-seen position.
func (b *setBuilder) addHost(host string) {
	if host == "" {
		return
	}
	if _, seen := b.hostIndex[host]; seen {
		return
	}
	b.hostIndex[host] = struct{}{}
	b.hosts = append(b.hosts, host)
}

func (b *setBuilder) addPort(port int) {
	if port < MinPort || port > MaxPort {
		return
	}
	b.ports[port] = struct{}{}
}

// addPair records an explicit host:port declaration, registering the host
// and port as well so the invariant pairs ⊆ hosts x ports holds.
func (b *setBuilder) addPair(host string, port int) {
	if host == "" || port < MinPort || port > MaxPort {
		return
	}
	b.addHost(host)
	b.addPort(port)
	b.pairs[Pair{Host: host, Port: port}] = struct{}{}
}

func (b *setBuilder) build() *Set {
	s := &Set{
		hosts: b.hosts,
		ports: b.ports,
		pairs: b.pairs,
	}
	s.sig = signature(b.pairs)
	return s
}

func signature(pairs map[Pair]struct{}) string {
	if len(pairs) == 0 {
		return ""
	}
	sorted := make([]Pair, 0, len(pairs))
	for p := range pairs {
		sorted = append(sorted, p)
	}
	sortPairs(sorted)

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Host != pairs[j].Host {
			return pairs[i].Host < pairs[j].Host
		}
		return pairs[i].Port < pairs[j].Port
	})
}
