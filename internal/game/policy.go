package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Policy declares how a charge is judged and paid out.
type Policy struct {
	// RewardFraction of the charged amount is paid to the player on success.
	RewardFraction  decimal.Decimal
	FixedXP         int
	// AmountTolerance is the exclusive bound on |entered - expected|.
	AmountTolerance decimal.Decimal
	SuccessHold     time.Duration
	FailureHold     time.Duration
}

var ErrInvalidPolicy = errors.New("invalid reward policy")

// DefaultPolicy pays 20% of the charge plus 50 XP and accepts a one-cent error.
func DefaultPolicy() Policy {
	return Policy{
		RewardFraction:  decimal.RequireFromString("0.2"),
		FixedXP:         50,
		AmountTolerance: decimal.RequireFromString("0.01"),
		SuccessHold:     2500 * time.Millisecond,
		FailureHold:     500 * time.Millisecond,
	}
}

func (p Policy) Validate() error {
	switch {
	case p.RewardFraction.IsNegative():
		return fmt.Errorf("%w: reward fraction %s is negative", ErrInvalidPolicy, p.RewardFraction)
	case p.FixedXP < 0:
		return fmt.Errorf("%w: xp %d is negative", ErrInvalidPolicy, p.FixedXP)
	case !p.AmountTolerance.IsPositive():
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalidPolicy)
	case p.SuccessHold < 0 || p.FailureHold < 0:
		return fmt.Errorf("%w: holds must not be negative", ErrInvalidPolicy)
	}
	return nil
}
