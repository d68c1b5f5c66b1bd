package cli

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/netip"
	"strings"
)

// consolePrompter reads operator answers line by line from the terminal.
type consolePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsolePrompter(in io.Reader, out io.Writer) *consolePrompter {
	return &consolePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt writes label without a newline and returns the next input line
// without its line ending. A last line without a newline is still returned;
// io.EOF is only reported when nothing was read.
func (p *consolePrompter) Prompt(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label); err != nil {
		return "", err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// localAddr returns the address of the interface that routes to the
// internet. Dialing UDP sends no packet.
func localAddr() (netip.Addr, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.Addr{}, fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	ip, ok := netip.AddrFromSlice(addr.IP)
	if !ok {
		return netip.Addr{}, fmt.Errorf("invalid local address %v", addr.IP)
	}
	return ip.Unmap(), nil
}
