package trade

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	orderNumberDateLayout = "20060102"
	orderNumberSeqWidth   = 4
)

// OrderNumberGenerator allocates the next order number for a day
type OrderNumberGenerator interface {
	Next(ctx context.Context, at time.Time) (string, error)
}

// OrderNumberPrefix returns the daily prefix, e.g. "20261018-"
func OrderNumberPrefix(at time.Time) string {
	return at.UTC().Format(orderNumberDateLayout) + "-"
}

// FormatOrderNumber renders a number such as 20261018-0007
func FormatOrderNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s%0*d", OrderNumberPrefix(at), orderNumberSeqWidth, seq)
}

// ParseOrderSequence extracts the daily sequence from an order number with the given prefix
func ParseOrderSequence(orderNumber, prefix string) (int64, bool) {
	if !strings.HasPrefix(orderNumber, prefix) {
		return 0, false
	}
	seq, err := strconv.ParseInt(orderNumber[len(prefix):], 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// NextOrderNumber returns the number following lastNumber for the day of at.
// An empty or unparsable lastNumber starts the day at 1.
func NextOrderNumber(at time.Time, lastNumber string) string {
	seq, ok := ParseOrderSequence(lastNumber, OrderNumberPrefix(at))
	if !ok {
		seq = 0
	}
	return FormatOrderNumber(at, seq+1)
}
