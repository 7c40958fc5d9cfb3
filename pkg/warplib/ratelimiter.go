package warplib

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/time/rate"
)

// RateLimitedReader throttles reads to a fixed number of bytes per second.
type RateLimitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

// NewRateLimitedReader wraps r. A limit of 0 or less returns r unchanged.
func NewRateLimitedReader(ctx context.Context, r io.Reader, limit int64) io.Reader {
	if limit <= 0 {
		return r
	}
	burst := int(limit)
	if burst < int(DEF_CHUNK_SIZE) {
		burst = int(DEF_CHUNK_SIZE)
	}
	return &RateLimitedReader{
		ctx:     ctx,
		r:       r,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// Read never asks the underlying reader for more than one burst, then
// waits for the tokens of what it actually read.
func (r *RateLimitedReader) Read(b []byte) (int, error) {
	if burst := r.limiter.Burst(); len(b) > burst {
		b = b[:burst]
	}
	n, err := r.r.Read(b)
	if n > 0 {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil && err == nil {
			err = werr
		}
	}
	return n, err
}

// ParseSpeedLimit parses "512KB", "1.5MB", "100" or "0" into bytes per
// second. 0 means unlimited.
func ParseSpeedLimit(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty speed limit")
	}
	i := strings.IndexFunc(s, func(c rune) bool {
		return (c < '0' || c > '9') && c != '.'
	})
	numStr, unit := s, ""
	if i >= 0 {
		numStr, unit = s[:i], s[i:]
	}
	if numStr == "" {
		return 0, fmt.Errorf("invalid speed limit: no numeric value in %q", s)
	}
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid speed limit: %q is not a valid number", numStr)
	}
	var multiplier int64
	switch unit {
	case "", "B":
		multiplier = B
	case "K", "KB":
		multiplier = KB
	case "M", "MB":
		multiplier = MB
	case "G", "GB":
		multiplier = GB
	default:
		return 0, fmt.Errorf("invalid speed limit unit: %q (use B, KB, MB, or GB)", unit)
	}
	return int64(num * float64(multiplier)), nil
}
