// Package marketdata disseminates top-of-book snapshots through Redis. Each
// security keeps one hash with the latest quote plus a pub/sub channel for
// push subscribers.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/equitix/exchange-core/pkg/engine"
)

type Publisher struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPublisher(client *redis.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "md"
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		ttl:    24 * time.Hour,
	}
}

func (p *Publisher) quoteKey(securityID string) string {
	return fmt.Sprintf("%s:quote:%s", p.prefix, securityID)
}

func (p *Publisher) channel(securityID string) string {
	return fmt.Sprintf("%s:stream:%s", p.prefix, securityID)
}

// PublishQuote stores the latest snapshot and pushes it to subscribers.
func (p *Publisher) PublishQuote(ctx context.Context, quote engine.Quote) error {
	body, err := json.Marshal(quote)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.quoteKey(quote.SecurityID), body, p.ttl)
	pipe.Publish(ctx, p.channel(quote.SecurityID), body)
	_, err = pipe.Exec(ctx)
	return err
}

type openingState struct {
	SecurityID       string    `json:"security_id"`
	Price            int64     `json:"price"`
	TradableQuantity int64     `json:"tradable_quantity"`
	At               time.Time `json:"at"`
}

// PublishOpening stores the indicative opening while a security collects
// auction orders.
func (p *Publisher) PublishOpening(ctx context.Context, securityID string, price, tradableQuantity int64) error {
	body, err := json.Marshal(openingState{
		SecurityID:       securityID,
		Price:            price,
		TradableQuantity: tradableQuantity,
		At:               time.Now(),
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s:opening:%s", p.prefix, securityID)
	pipe := p.client.Pipeline()
	pipe.Set(ctx, key, body, p.ttl)
	pipe.Publish(ctx, p.channel(securityID), body)
	_, err = pipe.Exec(ctx)
	return err
}

// LatestQuote reads the stored snapshot; ok is false when none exists.
func (p *Publisher) LatestQuote(ctx context.Context, securityID string) (engine.Quote, bool, error) {
	var quote engine.Quote
	body, err := p.client.Get(ctx, p.quoteKey(securityID)).Bytes()
	if err == redis.Nil {
		return quote, false, nil
	}
	if err != nil {
		return quote, false, err
	}
	if err := json.Unmarshal(body, &quote); err != nil {
		return quote, false, err
	}
	return quote, true, nil
}
