package matching

type MatchingOutcome int

const (
	OutcomeExecuted MatchingOutcome = iota
	OutcomeNotEnoughCredit
	OutcomeNotEnoughPositions
	OutcomeMinQuantityFailed
	OutcomeMinQuantityInAuction
)

func (o MatchingOutcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "EXECUTED"
	case OutcomeNotEnoughCredit:
		return "NOT_ENOUGH_CREDIT"
	case OutcomeNotEnoughPositions:
		return "NOT_ENOUGH_POSITIONS"
	case OutcomeMinQuantityFailed:
		return "MIN_QTY_FAILED"
	case OutcomeMinQuantityInAuction:
		return "MIN_QTY_INVALID_FOR_AUCTION"
	}
	return "UNKNOWN"
}

// MatchResult is the terminal outcome of one core operation. Trades are in
// execution order; ActivatedOrders lists stop orders triggered by the
// operation's trades (they are not matched within the same pass).
type MatchResult struct {
	Outcome         MatchingOutcome
	Remainder       *Order
	Trades          []*Trade
	ActivatedOrders []*Order
}

func ExecutedResult(remainder *Order, trades []*Trade) *MatchResult {
	return &MatchResult{Outcome: OutcomeExecuted, Remainder: remainder, Trades: trades}
}

func AuctionResult(trades []*Trade) *MatchResult {
	return &MatchResult{Outcome: OutcomeExecuted, Trades: trades}
}

func NotEnoughCreditResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeNotEnoughCredit}
}

func NotEnoughPositionsResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeNotEnoughPositions}
}

func MinQuantityFailedResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeMinQuantityFailed}
}

func MinQuantityInAuctionResult() *MatchResult {
	return &MatchResult{Outcome: OutcomeMinQuantityInAuction}
}
