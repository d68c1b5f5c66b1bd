// Package network turns an IPv4 address block into the ordered sequence of
// addresses it covers and partitions that sequence into fixed-size batches.
package network

import (
	"encoding/binary"
	"fmt"
	"iter"
	"net/netip"
	"strconv"
	"strings"

	"github.com/anstrom/hostsweep/internal/errors"
)

const maxPrefix = 32

// Block is an IPv4 start address plus a prefix length. The start does not
// have to be aligned; the covered range is always [Network, Broadcast].
type Block struct {
	start  netip.Addr
	prefix int
}

// ParseBlock builds a Block from a start address and prefix length.
func ParseBlock(start string, prefix int) (Block, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(start))
	if err != nil {
		return Block{}, errors.WrapConfigError(errors.CodeConfiguration, "invalid address block start", err)
	}
	return NewBlock(addr, prefix)
}

// ParseCIDR parses "a.b.c.d/n" notation.
func ParseCIDR(cidr string) (Block, error) {
	addrText, prefixText, ok := strings.Cut(strings.TrimSpace(cidr), "/")
	if !ok {
		return Block{}, errors.NewConfigFieldError(errors.CodeConfiguration,
			"address block must be in a.b.c.d/n notation", "cidr", cidr)
	}
	prefix, err := strconv.Atoi(prefixText)
	if err != nil {
		return Block{}, errors.WrapConfigError(errors.CodeConfiguration, "invalid prefix length", err)
	}
	return ParseBlock(addrText, prefix)
}

// NewBlock validates addr and prefix and returns the Block.
func NewBlock(addr netip.Addr, prefix int) (Block, error) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return Block{}, errors.NewConfigFieldError(errors.CodeConfiguration,
			"address block start must be an IPv4 address", "target_ip", addr.String())
	}
	if prefix < 0 || prefix > maxPrefix {
		return Block{}, errors.NewConfigFieldError(errors.CodeConfiguration,
			"prefix length must be between 0 and 32", "cidr", prefix)
	}
	return Block{start: addr, prefix: prefix}, nil
}

// Start returns the address the block was built from.
func (b Block) Start() netip.Addr { return b.start }

// Prefix returns the prefix length.
func (b Block) Prefix() int { return b.prefix }

// Network returns the start address with all host bits cleared.
func (b Block) Network() netip.Addr {
	return fromUint32(toUint32(b.start) & b.mask())
}

// Broadcast returns the start address with all host bits set.
func (b Block) Broadcast() netip.Addr {
	return fromUint32(toUint32(b.start) | ^b.mask())
}

// Size returns the number of addresses in the block, 2^(32-prefix).
func (b Block) Size() uint64 {
	return uint64(1) << (maxPrefix - b.prefix)
}

// String returns the block in start/prefix notation, as entered.
func (b Block) String() string {
	return fmt.Sprintf("%s/%d", b.start, b.prefix)
}

// All yields every address of the block in ascending order. The sequence
// can be ranged over any number of times.
func (b Block) All() iter.Seq[netip.Addr] {
	first, last := toUint32(b.Network()), toUint32(b.Broadcast())
	return func(yield func(netip.Addr) bool) {
		for cur := uint64(first); cur <= uint64(last); cur++ {
			if !yield(fromUint32(uint32(cur))) {
				return
			}
		}
	}
}

// Enumerate returns every address of the block in ascending order. Very short
// prefixes allocate accordingly; capping the size is up to the caller.
func (b Block) Enumerate() []netip.Addr {
	addrs := make([]netip.Addr, 0, b.Size())
	for addr := range b.All() {
		addrs = append(addrs, addr)
	}
	return addrs
}

func (b Block) mask() uint32 {
	if b.prefix == 0 {
		return 0
	}
	return ^uint32(0) << (maxPrefix - b.prefix)
}

func toUint32(addr netip.Addr) uint32 {
	a4 := addr.As4()
	return binary.BigEndian.Uint32(a4[:])
}

func fromUint32(v uint32) netip.Addr {
	var a4 [4]byte
	binary.BigEndian.PutUint32(a4[:], v)
	return netip.AddrFrom4(a4)
}
