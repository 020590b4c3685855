package matching

// Shareholder tracks per-security positions. Sell orders may only be entered
// against positions the shareholder actually holds, counting quantity
// already committed to open sell orders.
type Shareholder struct {
	ShareholderID int64
	positions     map[string]int64
}

func NewShareholder(shareholderID int64) *Shareholder {
	return &Shareholder{
		ShareholderID: shareholderID,
		positions:     make(map[string]int64),
	}
}

func (s *Shareholder) PositionOn(securityID string) int64 {
	return s.positions[securityID]
}

func (s *Shareholder) HasEnoughPositionsOn(securityID string, amount int64) bool {
	return s.positions[securityID] >= amount
}

func (s *Shareholder) IncPosition(securityID string, amount int64) {
	s.positions[securityID] += amount
}

func (s *Shareholder) DecPosition(securityID string, amount int64) {
	if s.positions[securityID]-amount < 0 {
		panic("matching: shareholder position went negative")
	}
	s.positions[securityID] -= amount
}
