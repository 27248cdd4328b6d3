package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func items(prices ...string) []Product {
	out := make([]Product, len(prices))
	for i, p := range prices {
		out[i] = Product{ID: string(rune('a' + i)), Name: "item", Price: dec(p)}
	}
	return out
}

func TestVerify_ExactSumSucceeds(t *testing.T) {
	cases := [][]Product{
		items("4.50", "5.00"),
		items("12.00", "4.00"),
		items("0.10", "0.20", "0.30"),
		items("19.99", "0.01", "3.33", "7.77", "100"),
	}
	for _, it := range cases {
		res := Verify(DefaultPolicy(), it, Sum(it))
		assert.Equal(t, Success, res.Outcome)
		assert.True(t, res.OK())
	}
}

func TestVerify_ToleranceBoundary(t *testing.T) {
	nine := items("4.00", "5.00")
	tests := []struct {
		name    string
		amount  string
		outcome Outcome
	}{
		{"exact", "9.00", Success},
		{"half a cent over", "9.005", Success},
		{"half a cent under", "8.995", Success},
		{"just inside", "9.0099", Success},
		{"one cent over", "9.01", Failure},
		{"one cent under", "8.99", Failure},
		{"two cents over", "9.02", Failure},
		{"zero", "0", Failure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Verify(DefaultPolicy(), nine, dec(tt.amount))
			assert.Equal(t, tt.outcome, res.Outcome)
		})
	}
}

func TestVerify_EndToEndExample(t *testing.T) {
	desired := items("4.50", "5.00")

	win := Verify(DefaultPolicy(), desired, dec("9.50"))
	require.Equal(t, Success, win.Outcome)
	assertDec(t, "1.90", win.Reward.Money)
	assert.Equal(t, 50, win.Reward.XP)

	miss := Verify(DefaultPolicy(), desired, dec("9.49"))
	require.Equal(t, Failure, miss.Outcome)
	assertDec(t, "9.50", miss.Expected)
	assertDec(t, "9.49", miss.Entered)
	assert.True(t, miss.Reward.Money.IsZero())
	assert.Zero(t, miss.Reward.XP)
}

func TestVerify_RewardIsDeterministic(t *testing.T) {
	desired := items("33.30", "66.70")
	first := Verify(DefaultPolicy(), desired, dec("100"))
	for i := 0; i < 20; i++ {
		again := Verify(DefaultPolicy(), desired, dec("100"))
		assert.True(t, first.Reward.Money.Equal(again.Reward.Money))
		assert.Equal(t, first.Reward.XP, again.Reward.XP)
	}
	assertDec(t, "20", first.Reward.Money)
}

func TestVerify_RewardUsesEnteredAmount(t *testing.T) {
	res := Verify(DefaultPolicy(), items("9.00"), dec("9.005"))
	require.True(t, res.OK())
	assertDec(t, "1.801", res.Reward.Money)
}

func TestVerify_EmptyItems(t *testing.T) {
	res := Verify(DefaultPolicy(), nil, decimal.Zero)
	assert.Equal(t, Success, res.Outcome)
	assertDec(t, "0", res.Expected)

	res = Verify(DefaultPolicy(), []Product{}, dec("0.01"))
	assert.Equal(t, Failure, res.Outcome)
}

func TestVerify_CustomPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.RewardFraction = dec("0.5")
	p.FixedXP = 10
	p.AmountTolerance = dec("1")

	res := Verify(p, items("10"), dec("10.90"))
	require.True(t, res.OK())
	assertDec(t, "5.45", res.Reward.Money)
	assert.Equal(t, 10, res.Reward.XP)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.AmountTolerance = decimal.Zero
	assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy)

	p = DefaultPolicy()
	p.RewardFraction = dec("-0.1")
	assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy)

	p = DefaultPolicy()
	p.FixedXP = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidPolicy)
}
