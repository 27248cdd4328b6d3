package game

import "github.com/shopspring/decimal"

// Outcome of a charge attempt.
type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// Reward is folded into PlayerState on a successful charge.
type Reward struct {
	Money decimal.Decimal `json:"money"`
	XP    int             `json:"xp"`
}

// Result of Verify. Reward is zero on Failure.
type Result struct {
	Outcome  Outcome         `json:"outcome"`
	Expected decimal.Decimal `json:"expectedTotal"`
	Entered  decimal.Decimal `json:"enteredAmount"`
	Reward   Reward          `json:"reward"`
}

func (r Result) OK() bool { return r.Outcome == Success }

// Verify compares the charged amount against the true total of the desired
// items. The player's selection plays no part in it.
func Verify(p Policy, items []Product, entered decimal.Decimal) Result {
	expected := Sum(items)
	res := Result{Outcome: Failure, Expected: expected, Entered: entered}
	if entered.Sub(expected).Abs().LessThan(p.AmountTolerance) {
		res.Outcome = Success
		res.Reward = Reward{
			Money: entered.Mul(p.RewardFraction),
			XP:    p.FixedXP,
		}
	}
	return res
}
