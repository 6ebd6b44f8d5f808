package trade

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func fixedID() string { return "FIXED" }

func baseDraft() Draft {
	return Draft{
		Symbol:     "EURUSD",
		Direction:  Long,
		EntryDate:  "2024-01-02",
		EntryPrice: ptr(1.1000),
		StopLoss:   ptr(1.0950),
		TakeProfit: ptr(1.1100),
		Quantity:   ptr(10000),
	}
}

func TestBuildOpenTrade(t *testing.T) {
	t.Parallel()

	got, err := Build(baseDraft(), fixedID)
	require.NoError(t, err)

	assert.Equal(t, "FIXED", got.ID)
	assert.Equal(t, StatusOpen, got.Status)
	assert.Zero(t, got.PnL)
	assert.Nil(t, got.ExitPrice)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got.EntryDate)
}

func TestBuildDerivesStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dir    Direction
		exit   float64
		status Status
		pnl    float64
	}{
		{"long win", Long, 110, StatusWin, 20},
		{"long loss", Long, 95, StatusLoss, -10},
		{"short win", Short, 95, StatusWin, 10},
		{"short loss", Short, 110, StatusLoss, -20},
		{"break even", Long, 100, StatusBreakEven, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := baseDraft()
			d.Direction = tt.dir
			d.EntryPrice = ptr(100)
			d.Quantity = ptr(2)
			d.ExitPrice = ptr(tt.exit)

			got, err := Build(d, fixedID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.pnl, got.PnL)
		})
	}
}

func TestBuildOutcomeSetsExitPrice(t *testing.T) {
	t.Parallel()

	d := baseDraft()
	d.EntryPrice = ptr(100)
	d.StopLoss = ptr(95)
	d.TakeProfit = ptr(110)
	d.Quantity = ptr(1)

	d.Outcome = OutcomeHitTarget
	got, err := Build(d, fixedID)
	require.NoError(t, err)
	require.NotNil(t, got.ExitPrice)
	assert.Equal(t, 110.0, *got.ExitPrice)
	assert.Equal(t, StatusWin, got.Status)

	d.Outcome = OutcomeHitStop
	got, err = Build(d, fixedID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, *got.ExitPrice)
	assert.Equal(t, StatusLoss, got.Status)

	d.Outcome = "tp"
	got, err = Build(d, fixedID)
	require.NoError(t, err)
	assert.Equal(t, 110.0, *got.ExitPrice)

	d.Outcome = "sl"
	got, err = Build(d, fixedID)
	require.NoError(t, err)
	assert.Equal(t, 95.0, *got.ExitPrice)

	d.Outcome = OutcomeOpen
	got, err = Build(d, fixedID)
	require.NoError(t, err)
	assert.Nil(t, got.ExitPrice)
	assert.Equal(t, StatusOpen, got.Status)

	// explicit exit wins over outcome
	d.ExitPrice = ptr(100)
	got, err = Build(d, fixedID)
	require.NoError(t, err)
	assert.Equal(t, StatusBreakEven, got.Status)
}

func TestBuildReusesID(t *testing.T) {
	t.Parallel()

	d := baseDraft()
	d.ID = "existing"
	got, err := Build(d, func() string {
		t.Fatal("newID must not be called for an existing trade")
		return ""
	})
	require.NoError(t, err)
	assert.Equal(t, "existing", got.ID)
}

func TestBuildGeneratesULID(t *testing.T) {
	t.Parallel()

	a, err := Build(baseDraft(), nil)
	require.NoError(t, err)
	b, err := Build(baseDraft(), nil)
	require.NoError(t, err)

	assert.Len(t, a.ID, 26)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Less(t, a.ID, b.ID)
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		field string
		edit  func(*Draft)
	}{
		{"blank symbol", "symbol", func(d *Draft) { d.Symbol = "  " }},
		{"missing date", "entryDate", func(d *Draft) { d.EntryDate = "" }},
		{"bad date", "entryDate", func(d *Draft) { d.EntryDate = "yesterday" }},
		{"missing entry", "entryPrice", func(d *Draft) { d.EntryPrice = nil }},
		{"nan entry", "entryPrice", func(d *Draft) { d.EntryPrice = ptr(math.NaN()) }},
		{"missing stop", "stopLoss", func(d *Draft) { d.StopLoss = nil }},
		{"inf target", "takeProfit", func(d *Draft) { d.TakeProfit = ptr(math.Inf(1)) }},
		{"missing quantity", "quantity", func(d *Draft) { d.Quantity = nil }},
		{"nan exit", "exitPrice", func(d *Draft) { d.ExitPrice = ptr(math.NaN()) }},
		{"bad direction", "direction", func(d *Draft) { d.Direction = "SIDEWAYS" }},
		{"unknown outcome", "outcome", func(d *Draft) { d.Outcome = "HIT_BE" }},
		{"unknown outcome with exit", "outcome", func(d *Draft) {
			d.ExitPrice = ptr(1)
			d.Outcome = "maybe"
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := baseDraft()
			tt.edit(&d)

			_, err := Build(d, fixedID)
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParseDirectionAliases(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Direction{
		"":      Long,
		"buy":   Long,
		"LONG":  Long,
		"Sell":  Short,
		"short": Short,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestStatusCodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusOpen, StatusWin, StatusLoss, StatusBreakEven} {
		got, err := ParseStatus(s.Code())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, "BE", StatusBreakEven.Code())
}

func TestDraftOfRebuildsSameTrade(t *testing.T) {
	t.Parallel()

	d := baseDraft()
	d.ExitPrice = ptr(1.1050)
	orig, err := Build(d, fixedID)
	require.NoError(t, err)

	again, err := Build(DraftOf(orig), nil)
	require.NoError(t, err)
	assert.Equal(t, orig, again)
}

// Property: for any closed trade, pnl equals (exit-entry)*qty*sign exactly and
// the status agrees with the sign of pnl.
func TestProperty_PnLMatchesFormula(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("closed trade pnl and status are derived from prices", prop.ForAll(
		func(entry, exit, qty float64, short bool) bool {
			d := baseDraft()
			if short {
				d.Direction = Short
			}
			d.EntryPrice = &entry
			d.ExitPrice = &exit
			d.Quantity = &qty

			got, err := Build(d, fixedID)
			if err != nil {
				return false
			}
			want := (exit - entry) * qty * d.Direction.Sign()
			if got.PnL != want {
				return false
			}
			switch {
			case want > 0:
				return got.Status == StatusWin
			case want < 0:
				return got.Status == StatusLoss
			default:
				return got.Status == StatusBreakEven
			}
		},
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.01, 100000),
		gen.Bool(),
	))

	properties.Property("trades without exit are open with zero pnl", prop.ForAll(
		func(entry, qty float64) bool {
			d := baseDraft()
			d.EntryPrice = &entry
			d.Quantity = &qty
			got, err := Build(d, fixedID)
			return err == nil && got.Status == StatusOpen && got.PnL == 0
		},
		gen.Float64Range(0.5, 5000),
		gen.Float64Range(0.01, 100000),
	))

	properties.TestingRun(t)
}
