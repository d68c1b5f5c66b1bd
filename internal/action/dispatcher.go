package action

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/anstrom/hostsweep/internal/errors"
	"github.com/anstrom/hostsweep/internal/logging"
	"github.com/anstrom/hostsweep/internal/scanning"
)

const (
	promptChoice    = "Action 1-4: "
	promptTarget    = "Enter IP: "
	promptStartPort = "Enter the start port: "
	promptEndPort   = "Enter the end port: "

	msgInvalidChoice = "Invalid input. Please enter a valid action number."
	msgScanStart     = "Start scanning for open ports"
)

// Prompter reads one line of operator input after showing label.
type Prompter interface {
	Prompt(label string) (string, error)
}

// PortScanner is the port scan engine as seen by the dispatcher.
type PortScanner interface {
	ScanCatalog(ctx context.Context, target netip.Addr) scanning.PortResultMap
	ScanRange(ctx context.Context, target netip.Addr, start, end uint16) scanning.PortResultMap
}

// Request is a fully specified action.
type Request struct {
	Command   Command
	Target    netip.Addr
	StartPort uint16
	EndPort   uint16
}

type state int

const (
	stateAwaitingChoice state = iota
	stateAwaitingTarget
	stateAwaitingPortRange
	stateExecuting
)

func (s state) String() string {
	switch s {
	case stateAwaitingChoice:
		return "awaiting_choice"
	case stateAwaitingTarget:
		return "awaiting_target"
	case stateAwaitingPortRange:
		return "awaiting_port_range"
	case stateExecuting:
		return "executing"
	default:
		return "unknown"
	}
}

// Dispatcher turns operator input into one port scan over the discovered hosts.
type Dispatcher struct {
	prompter Prompter
	out      io.Writer
	scanner  PortScanner
	hosts    []netip.Addr
	logger   *logging.Logger
}

// NewDispatcher creates a dispatcher. hosts are scanned, in order, by the
// all-hosts commands. Menu and results are written to out.
func NewDispatcher(prompter Prompter, out io.Writer, scanner PortScanner, hosts []netip.Addr,
	logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		prompter: prompter,
		out:      out,
		scanner:  scanner,
		hosts:    hosts,
		logger:   logger.WithComponent("action"),
	}
}

// ReadRequest shows the menu until a valid command is chosen, then asks for
// the target and port range the command needs. An invalid menu choice is
// asked again; an invalid address or port is returned as an input error.
func (d *Dispatcher) ReadRequest(ctx context.Context) (Request, error) {
	var req Request
	st := stateAwaitingChoice

	for st != stateExecuting {
		if err := ctx.Err(); err != nil {
			return Request{}, err
		}
		d.logger.Debug("Dispatcher state", "state", st.String())

		var err error
		switch st {
		case stateAwaitingChoice:
			req.Command, err = d.readChoice()
			if err != nil {
				if errors.IsCode(err, errors.CodeInputParse) {
					d.println(msgInvalidChoice)
					continue
				}
				return Request{}, err
			}
			st = d.next(req.Command, st)

		case stateAwaitingTarget:
			req.Target, err = d.readTarget()
			if err != nil {
				return Request{}, err
			}
			st = d.next(req.Command, st)

		case stateAwaitingPortRange:
			req.StartPort, req.EndPort, err = d.readPortRange()
			if err != nil {
				return Request{}, err
			}
			st = stateExecuting
		}
	}
	return req, nil
}

// next returns the state that follows from for command c.
func (d *Dispatcher) next(c Command, from state) state {
	if from == stateAwaitingChoice && c.NeedsTarget() {
		return stateAwaitingTarget
	}
	if c.NeedsPortRange() {
		return stateAwaitingPortRange
	}
	return stateExecuting
}

func (d *Dispatcher) readChoice() (Command, error) {
	d.printMenu()
	text, err := d.prompter.Prompt(promptChoice)
	if err != nil {
		return 0, err
	}
	return ParseCommand(text)
}

func (d *Dispatcher) readTarget() (netip.Addr, error) {
	text, err := d.prompter.Prompt(promptTarget)
	if err != nil {
		return netip.Addr{}, err
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(text))
	if err != nil {
		return netip.Addr{}, errors.NewInputError("target address", text, err)
	}
	return addr.Unmap(), nil
}

func (d *Dispatcher) readPortRange() (uint16, uint16, error) {
	text, err := d.prompter.Prompt(promptStartPort)
	if err != nil {
		return 0, 0, err
	}
	start, err := scanning.ParsePort("start port", text)
	if err != nil {
		return 0, 0, err
	}

	text, err = d.prompter.Prompt(promptEndPort)
	if err != nil {
		return 0, 0, err
	}
	end, err := scanning.ParsePort("end port", text)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// Execute runs the request and merges the per-host results.
func (d *Dispatcher) Execute(ctx context.Context, req Request) scanning.PortResultMap {
	targets := d.hosts
	if req.Command.NeedsTarget() {
		targets = []netip.Addr{req.Target}
	}

	d.logger.Info("Executing action",
		"command", req.Command.String(),
		"targets", len(targets),
		"start_port", req.StartPort,
		"end_port", req.EndPort)

	fragments := make([]scanning.PortResultMap, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			d.logger.ErrorScan("Port scan interrupted", target.String(), err)
			break
		}
		if req.Command.NeedsPortRange() {
			fragments = append(fragments, d.scanner.ScanRange(ctx, target, req.StartPort, req.EndPort))
		} else {
			fragments = append(fragments, d.scanner.ScanCatalog(ctx, target))
		}
	}
	return scanning.Merge(fragments...)
}

// Run reads one request, executes it and prints the results. It does not
// return to the menu afterwards.
func (d *Dispatcher) Run(ctx context.Context) (scanning.PortResultMap, error) {
	req, err := d.ReadRequest(ctx)
	if err != nil {
		return nil, err
	}

	d.println(msgScanStart)
	results := d.Execute(ctx, req)
	if err := results.Render(d.out); err != nil {
		return results, fmt.Errorf("failed to write results: %w", err)
	}
	return results, ctx.Err()
}

func (d *Dispatcher) printMenu() {
	for _, c := range Commands() {
		d.println(fmt.Sprintf("%d. %s", int(c), c))
	}
}

func (d *Dispatcher) println(line string) {
	_, _ = fmt.Fprintln(d.out, line)
}
