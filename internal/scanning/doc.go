// Package scanning provides the TCP port scanning engine for hostsweep.
//
// # Overview
//
// The Engine probes ports with plain TCP connect attempts. Each (address,
// port) pair is an independent unit of work run through internal/workers,
// bounded by EngineConfig.MaxConcurrentConnects and by a per-attempt
// ConnectTimeout. A port is open when the connection is established. Any
// failed attempt means closed and is never reported as an error.
//
// # Main Components
//
//   - Catalog, CatalogGroups, CatalogPorts: the fixed well-known port lists
//     (relational, nosql, web_app_server, config_store, protocol)
//   - Engine.ScanCatalog: probe every catalog port on one address
//   - Engine.ScanRange: probe every port of an inclusive range on one address
//   - PortResultMap, Merge, PortResultMap.Render: aggregate and print results
//
// # Usage Examples
//
//	engine, err := scanning.NewEngine(scanning.DefaultEngineConfig())
//	if err != nil {
//		return err
//	}
//
//	target := netip.MustParseAddr("192.168.1.10")
//	results := scanning.Merge(
//		engine.ScanCatalog(ctx, target),
//		engine.ScanRange(ctx, target, 1, 1024),
//	)
//	_ = results.Render(os.Stdout)
//
// # Thread Safety
//
// An Engine holds no per-scan state and may be used from several goroutines.
// PortResultMap is a plain map and must not be written concurrently.
package scanning
