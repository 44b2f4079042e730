// Package tzmanager provides name-to-zone-record lookup over a compiled
// zonedb.Registry: an ordered array searched by binary search, per spec
// §4.2, rather than the map-based grouping the teacher's compiler uses
// internally to assemble zone continuation lines.
package tzmanager

import (
	"sort"

	"github.com/jgrahl/acetz/zonedb"
)

// Manager resolves zone and link names against an immutable Registry.
type Manager struct {
	registry *zonedb.Registry
}

// New returns a Manager backed by reg. reg is never mutated.
func New(reg *zonedb.Registry) *Manager {
	return &Manager{registry: reg}
}

// Get looks up name among both zones and links, sorted by Name, using
// binary search. It reports false if no zone or link carries that name.
func (m *Manager) Get(name string) (*zonedb.Info, bool) {
	list := m.registry.ZonesAndLinks
	i := sort.Search(len(list), func(i int) bool { return list[i].Name >= name })
	if i < len(list) && list[i].Name == name {
		return list[i], true
	}
	return nil, false
}

// GetZone is like Get but only considers true zones, never links.
func (m *Manager) GetZone(name string) (*zonedb.Info, bool) {
	list := m.registry.Zones
	i := sort.Search(len(list), func(i int) bool { return list[i].Name >= name })
	if i < len(list) && list[i].Name == name {
		return list[i], true
	}
	return nil, false
}

// Names returns every zone and link name in sorted order.
func (m *Manager) Names() []string {
	list := m.registry.ZonesAndLinks
	names := make([]string, len(list))
	for i, z := range list {
		names[i] = z.Name
	}
	return names
}
