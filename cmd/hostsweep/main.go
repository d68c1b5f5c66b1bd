// Command hostsweep discovers live hosts in an IPv4 block and scans their ports.
package main

import "github.com/anstrom/hostsweep/cmd/cli"

// Set by ldflags during build.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
