package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/equitix/exchange-core/pkg/matching"
)

const (
	numOrders = 1_000_000
	minPrice  = 100
	maxPrice  = 200
	minQty    = 1
	maxQty    = 100
)

func randomSpec(id int) matching.OrderSpec {
	side := matching.BUY
	if rand.Intn(2) == 0 {
		side = matching.SELL
	}
	return matching.OrderSpec{
		OrderID:   int64(id),
		Side:      side,
		Quantity:  int64(rand.Intn(maxQty-minQty+1) + minQty),
		Price:     int64(rand.Intn(maxPrice-minPrice+1) + minPrice),
		EntryTime: time.Now(),
	}
}

func main() {
	security := matching.NewSecurity("ABC123", 1, 1)
	broker := matching.NewBroker(1, 1<<62)
	shareholder := matching.NewShareholder(1)
	shareholder.IncPosition(security.ISIN, 1<<62)

	totalTrades := 0
	totalQty := int64(0)

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		result := security.NewOrder(randomSpec(i+1), broker, shareholder)
		totalTrades += len(result.Trades)
		for _, trade := range result.Trades {
			totalQty += trade.Quantity
		}
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("Total Orders     : %d\n", numOrders)
	fmt.Printf("Total Trades     : %d\n", totalTrades)
	fmt.Printf("Total Matched Qty: %d\n", totalQty)
	fmt.Printf("Time Taken       : %s\n", elapsed)
	fmt.Printf("Orders/sec       : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
