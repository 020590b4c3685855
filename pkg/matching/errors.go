package matching

import "errors"

// Validation errors are returned before any book, credit, or position
// mutation. Economic and policy failures are MatchResult outcomes instead.
var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrPeakSizeRequired        = errors.New("iceberg order requires a peak size")
	ErrPeakSizeOnNonIceberg    = errors.New("peak size specified for a non-iceberg order")
	ErrStopPriceChangeOnActive = errors.New("stop price specified for an activated stop order")
	ErrStopPriceOnNonStop      = errors.New("stop price specified for a non-stop order")
)
