package discovery

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrNegativeDepthLimit indicates a maximum depth below zero was requested.
var ErrNegativeDepthLimit = errors.New(depthLimitNegativeErrorMessageConstant)

// DepthLimit bounds how far DiscoverDescendants descends below its root.
// The zero value is a limit of zero, which only inspects the root itself.
type DepthLimit struct {
	maximum   int
	unlimited bool
}

// UnlimitedDepth returns a limit that never stops descent.
func UnlimitedDepth() DepthLimit {
	return DepthLimit{unlimited: true}
}

// NewDepthLimit returns a limit that stops descending once depth reaches maximum.
func NewDepthLimit(maximum int) (DepthLimit, error) {
	if maximum < 0 {
		return DepthLimit{}, fmt.Errorf("%w: %d", ErrNegativeDepthLimit, maximum)
	}
	return DepthLimit{maximum: maximum}, nil
}

// Unlimited reports whether the limit never stops descent.
func (limit DepthLimit) Unlimited() bool {
	return limit.unlimited
}

// Maximum returns the bounded maximum depth; it is meaningless when Unlimited reports true.
func (limit DepthLimit) Maximum() int {
	return limit.maximum
}

// Exhausted reports whether a directory found at depth may not be descended into.
func (limit DepthLimit) Exhausted(depth int) bool {
	return !limit.unlimited && depth >= limit.maximum
}

func (limit DepthLimit) String() string {
	if limit.unlimited {
		return depthLimitUnlimitedLabelConstant
	}
	return strconv.Itoa(limit.maximum)
}
