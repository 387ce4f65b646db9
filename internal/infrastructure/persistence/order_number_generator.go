package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/wms/backend/internal/domain/trade"
)

// DBOrderNumberGenerator allocates order numbers as max+1 of the numbers
// already stored for the day. Concurrent callers may receive the same number;
// the unique index on order_number rejects the loser, which retries.
type DBOrderNumberGenerator struct {
	orders trade.OrderRepository
}

// NewDBOrderNumberGenerator creates a database-backed generator
func NewDBOrderNumberGenerator(orders trade.OrderRepository) *DBOrderNumberGenerator {
	return &DBOrderNumberGenerator{orders: orders}
}

// Next implements trade.OrderNumberGenerator
func (g *DBOrderNumberGenerator) Next(ctx context.Context, at time.Time) (string, error) {
	last, err := g.orders.LastOrderNumber(ctx, trade.OrderNumberPrefix(at))
	if err != nil {
		return "", fmt.Errorf("read last order number: %w", err)
	}
	return trade.NextOrderNumber(at, last), nil
}

// LastSequence returns the highest stored sequence for a daily prefix. It seeds
// the Redis counter.
func (g *DBOrderNumberGenerator) LastSequence(ctx context.Context, prefix string) (int64, error) {
	last, err := g.orders.LastOrderNumber(ctx, prefix)
	if err != nil {
		return 0, err
	}
	seq, _ := trade.ParseOrderSequence(last, prefix)
	return seq, nil
}

var _ trade.OrderNumberGenerator = (*DBOrderNumberGenerator)(nil)
