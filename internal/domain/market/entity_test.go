package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hermes/pkg/errors"
)

func obs(symbol string, price, prevClose float64) Observation {
	return Observation{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		PrevClose: decimal.NewFromFloat(prevClose),
		Source:    "yahoo",
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(10000, 0.5)

	tests := []struct {
		name    string
		obs     Observation
		wantErr bool
	}{
		{"typical quote", obs("AAPL", 230.00, 228.00), false},
		{"zero price", obs("AAPL", 0, 228.00), true},
		{"negative price", obs("AAPL", -5, 228.00), true},
		{"price at maximum", obs("BRK", 10000, 9900), true},
		{"price above maximum", obs("BRK", 12000, 11900), true},
		{"just below maximum", obs("BRK", 9999.99, 9900), false},
		{"zero previous close", obs("AAPL", 230.00, 0), true},
		{"move exactly at bound", obs("AAPL", 150, 100), true},
		{"move just inside bound", obs("AAPL", 149.99, 100), false},
		{"crash beyond bound", obs("AAPL", 40, 100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.obs)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrImplausible),
					"validation failures must unwrap to ErrImplausible")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestObservation_Quote(t *testing.T) {
	now := time.Now()

	q := obs("AAPL", 230.00, 228.00).Quote("Apple Inc.", now)

	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, "yahoo", q.Source)
	assert.False(t, q.Synthetic)
	assert.Equal(t, now, q.FetchedAt)
	assert.True(t, q.Change.Equal(decimal.NewFromFloat(2.00)), "change = price - prevClose")

	// 2 / 228 * 100 ≈ 0.877%
	pct, _ := q.ChangePercent.Round(3).Float64()
	assert.InDelta(t, 0.877, pct, 0.001)
}

func TestObservation_Quote_ZeroPrevClose(t *testing.T) {
	q := obs("X", 10, 0).Quote("X", time.Now())
	assert.True(t, q.ChangePercent.IsZero())
}

func TestStore_PublishReplacesWholeSnapshot(t *testing.T) {
	s := NewStore()

	first := []Quote{obs("AAPL", 230, 228).Quote("Apple Inc.", time.Now())}
	s.Publish(first)

	snap := s.Snapshot()
	require.Len(t, snap.Quotes, 1)
	assert.False(t, snap.UpdatedAt.IsZero())

	second := []Quote{
		obs("MSFT", 420, 418).Quote("Microsoft Corp.", time.Now()),
		obs("NVDA", 150, 149).Quote("NVIDIA Corp.", time.Now()),
	}
	s.Publish(second)

	snap = s.Snapshot()
	require.Len(t, snap.Quotes, 2)
	assert.Equal(t, "MSFT", snap.Quotes[0].Symbol)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.Publish([]Quote{obs("AAPL", 230, 228).Quote("Apple Inc.", time.Now())})

	snap := s.Snapshot()
	snap.Quotes[0].Symbol = "MUTATED"

	assert.Equal(t, "AAPL", s.Snapshot().Quotes[0].Symbol)
}

func TestStore_SubscribeNotifiesOnPublish(t *testing.T) {
	s := NewStore()
	sub := s.Subscribe()

	s.Publish(nil)

	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("expected a notification after publish")
	}

	// Coalescing: two publishes without a drain yield one pending signal
	s.Publish(nil)
	s.Publish(nil)
	<-sub
	select {
	case <-sub:
		t.Fatal("expected coalesced notifications")
	default:
	}
}
