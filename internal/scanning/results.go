package scanning

import (
	"fmt"
	"io"
	"maps"
	"net/netip"
	"slices"
	"strconv"
	"strings"
)

// PortResultMap maps an address to its open ports. An address without an
// entry has no open ports; entries are never empty.
type PortResultMap map[netip.Addr][]uint16

// Set stores the distinct ports of addr in ascending order, or removes the
// entry when ports is empty.
func (m PortResultMap) Set(addr netip.Addr, ports []uint16) {
	if len(ports) == 0 {
		delete(m, addr)
		return
	}
	m[addr] = sortedUnique(ports)
}

// Addrs returns the addresses with open ports in ascending order.
func (m PortResultMap) Addrs() []netip.Addr {
	return slices.SortedFunc(maps.Keys(m), netip.Addr.Compare)
}

// Render writes one line per address: the address left-justified in a
// 15-character field, a space, then the open ports joined with ", ".
func (m PortResultMap) Render(w io.Writer) error {
	for _, addr := range m.Addrs() {
		ports := m[addr]
		if len(ports) == 0 {
			continue
		}
		text := make([]string, len(ports))
		for i, p := range ports {
			text[i] = strconv.Itoa(int(p))
		}
		if _, err := fmt.Fprintf(w, "%-15s %s\n", addr, strings.Join(text, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// Merge combines fragments into a new map. For an address present in more
// than one fragment the later fragment wins. The inputs are not modified.
func Merge(fragments ...PortResultMap) PortResultMap {
	merged := PortResultMap{}
	for _, fragment := range fragments {
		for addr, ports := range fragment {
			merged.Set(addr, ports)
		}
	}
	return merged
}
