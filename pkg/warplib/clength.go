package warplib

import "fmt"

// ContentLength is a byte count rendered the way progress lines show sizes.
type ContentLength int64

func (c ContentLength) v() int64 {
	return int64(c)
}

// String formats as "N bytes", "N.NN KB" or "N.NN MB".
func (c ContentLength) String() string {
	n := c.v()
	switch {
	case n < KB:
		return fmt.Sprintf("%d bytes", n)
	case n < MB:
		return fmt.Sprintf("%.2f KB", float64(n)/float64(KB))
	}
	return fmt.Sprintf("%.2f MB", float64(n)/float64(MB))
}

// IsUnknown reports whether the length was never declared.
func (c ContentLength) IsUnknown() bool {
	return c.v() <= 0
}
