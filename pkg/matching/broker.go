package matching

// Broker holds the credit balance that buy-side orders draw on. Credit is
// debited when an order trades or rests in the book and refunded when the
// order is deleted or a matching attempt rolls back.
type Broker struct {
	BrokerID int64
	credit   int64
}

func NewBroker(brokerID, initialCredit int64) *Broker {
	return &Broker{BrokerID: brokerID, credit: initialCredit}
}

func (b *Broker) Credit() int64 { return b.credit }

func (b *Broker) HasEnoughCredit(amount int64) bool {
	return b.credit >= amount
}

func (b *Broker) IncreaseCreditBy(amount int64) {
	if amount < 0 {
		panic("matching: negative credit amount")
	}
	b.credit += amount
}

func (b *Broker) DecreaseCreditBy(amount int64) {
	if amount < 0 {
		panic("matching: negative credit amount")
	}
	if b.credit-amount < 0 {
		panic("matching: broker credit went negative")
	}
	b.credit -= amount
}
