package scanning

import "slices"

// CatalogGroup is a named list of well-known TCP ports.
type CatalogGroup struct {
	Name  string
	Ports []uint16
}

// The groups keep their duplicates; a port listed twice is probed twice.
var catalog = []CatalogGroup{
	{
		Name:  "relational",
		Ports: []uint16{7210, 3306, 1521, 1830, 5432, 1433, 1434},
	},
	{
		Name: "nosql",
		Ports: []uint16{
			8529, 7000, 7001, 9042, 5984, 9200, 9300, 27017, 27018, 27019, 28017,
			7473, 7474, 6379, 8087, 8098, 8080, 28015, 29015, 7574, 8983,
		},
	},
	{
		Name: "web_app_server",
		Ports: []uint16{
			3528, 3529, 4447, 8009, 8080, 8443, 9990, 9999, 8080, 8005, 8009, 8080,
			4712, 4713, 8009, 8080, 8443, 9990, 9993, 5556, 7001, 7002, 8001, 8008,
			9043, 9060, 9080, 9443,
		},
	},
	{
		Name: "config_store",
		Ports: []uint16{
			8300, 8301, 8302, 8400, 8500, 8600, 2379, 2380, 6443, 8080, 5050, 5051,
			2181, 2888, 3888,
		},
	},
	{
		Name: "protocol",
		Ports: []uint16{
			53, 853, 20, 21, 989, 990, 80, 443, 143, 993, 543, 544, 749, 750, 751,
			752, 753, 754, 760, 389, 137, 138, 139, 944, 123, 530, 514, 873, 445,
			161, 162, 199, 22, 23, 992, 25, 465, 43,
		},
	},
}

// CatalogGroups returns a copy of the catalog groups in their fixed order.
func CatalogGroups() []CatalogGroup {
	groups := make([]CatalogGroup, len(catalog))
	for i, g := range catalog {
		groups[i] = CatalogGroup{Name: g.Name, Ports: slices.Clone(g.Ports)}
	}
	return groups
}

// CatalogPorts returns the ports of the named group, or nil and false.
func CatalogPorts(name string) ([]uint16, bool) {
	for _, g := range catalog {
		if g.Name == name {
			return slices.Clone(g.Ports), true
		}
	}
	return nil, false
}

// Catalog returns every group concatenated in order, duplicates included.
func Catalog() []uint16 {
	var ports []uint16
	for _, g := range catalog {
		ports = append(ports, g.Ports...)
	}
	return ports
}
