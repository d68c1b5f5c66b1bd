// Package action implements the interactive step that follows discovery:
// the operator picks one of four port scan commands, supplies a target and
// a port range where the command needs them, and the scan is executed.
package action

import (
	"strconv"
	"strings"

	"github.com/anstrom/hostsweep/internal/errors"
)

// Command is one of the four port scan actions.
type Command int

const (
	CatalogAllHosts Command = iota + 1
	CatalogOneHost
	RangeAllHosts
	RangeOneHost
)

var commandText = map[Command]string{
	CatalogAllHosts: "Scan for most used ports on all IPs",
	CatalogOneHost:  "Scan for most used ports on specific IP",
	RangeAllHosts:   "Scan for ports of specific range on all IPs",
	RangeOneHost:    "Scan for ports of specific range on specific IP",
}

// Commands returns every command in menu order.
func Commands() []Command {
	return []Command{CatalogAllHosts, CatalogOneHost, RangeAllHosts, RangeOneHost}
}

// String returns the menu description.
func (c Command) String() string {
	if text, ok := commandText[c]; ok {
		return text
	}
	return "Command(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is one of the four commands.
func (c Command) Valid() bool {
	_, ok := commandText[c]
	return ok
}

// NeedsTarget reports whether c scans a single operator-supplied address.
func (c Command) NeedsTarget() bool {
	return c == CatalogOneHost || c == RangeOneHost
}

// NeedsPortRange reports whether c scans a port range instead of the catalog.
func (c Command) NeedsPortRange() bool {
	return c == RangeAllHosts || c == RangeOneHost
}

// ParseCommand decodes the menu number typed by the operator.
func ParseCommand(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, errors.NewInputError("action", text, err)
	}
	if c := Command(n); c.Valid() {
		return c, nil
	}
	return 0, errors.NewInputError("action", text, nil)
}
