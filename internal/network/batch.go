package network

import (
	"net/netip"
	"strconv"

	"github.com/anstrom/hostsweep/internal/errors"
)

// Batch slices seq into consecutive chunks of size addresses. Only the last
// chunk may be shorter. The chunks share seq's backing array.
func Batch(seq []netip.Addr, size int) ([][]netip.Addr, error) {
	if size < 1 {
		return nil, &errors.InputError{
			Code:  errors.CodeValidation,
			Field: "batch size",
			Input: strconv.Itoa(size),
		}
	}

	batches := make([][]netip.Addr, 0, (len(seq)+size-1)/size)
	for start := 0; start < len(seq); start += size {
		end := min(start+size, len(seq))
		batches = append(batches, seq[start:end:end])
	}
	return batches, nil
}
