package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Phase of a round as seen by the game screen.
type Phase string

const (
	AwaitingScenario Phase = "awaiting_scenario"
	Ready            Phase = "ready"
	Evaluating       Phase = "evaluating"
	SuccessCooldown  Phase = "success_cooldown"
	FailureFlash     Phase = "failure_flash"
)

var (
	ErrWrongPhase  = errors.New("action not allowed in this phase")
	ErrUnknownItem = errors.New("item not in scenario")
)

// Round drives one customer from presentation to a successful charge. It is
// not safe for concurrent use; the owning controller serializes access.
type Round struct {
	phase     Phase
	customer  Customer
	selection Selection
	keypad    Keypad
	until     time.Time
	last      *Result
}

func NewRound() *Round {
	return &Round{phase: AwaitingScenario}
}

func (r *Round) Phase() Phase { return r.phase }

// Customer returns the scenario being played, if any.
func (r *Round) Customer() (Customer, bool) {
	if r.phase == AwaitingScenario {
		return Customer{}, false
	}
	return r.customer.Clone(), true
}

// HoldUntil is when the current success or failure hold ends.
func (r *Round) HoldUntil() time.Time { return r.until }

// LastResult is the outcome of the most recent confirm in this round.
func (r *Round) LastResult() (Result, bool) {
	if r.last == nil {
		return Result{}, false
	}
	return *r.last, true
}

func (r *Round) Selected() []Product { return r.selection.Items() }

func (r *Round) SelectedTotal() decimal.Decimal { return r.selection.Total() }

func (r *Round) Display() string { return r.keypad.Display() }

// Present starts a round with a freshly fetched customer.
func (r *Round) Present(c Customer) error {
	if r.phase != AwaitingScenario {
		return fmt.Errorf("%w: present in %s", ErrWrongPhase, r.phase)
	}
	r.customer = c.Clone()
	r.selection.Clear()
	r.keypad.Reset()
	r.last = nil
	r.until = time.Time{}
	r.phase = Ready
	return nil
}

// Toggle flips an item in the selection.
func (r *Round) Toggle(productID string) (bool, error) {
	if r.phase != Ready {
		return false, fmt.Errorf("%w: toggle in %s", ErrWrongPhase, r.phase)
	}
	for _, p := range r.customer.DesiredItems {
		if p.ID == productID {
			return r.selection.Toggle(p), nil
		}
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownItem, productID)
}

// Press forwards keys to the terminal keypad. A rejected key leaves the
// display untouched.
func (r *Round) Press(keys ...string) error {
	if r.phase != Ready {
		return fmt.Errorf("%w: keypad in %s", ErrWrongPhase, r.phase)
	}
	return r.keypad.PressAll(keys...)
}

// ConfirmKeypad charges whatever the keypad shows.
func (r *Round) ConfirmKeypad(p Policy, now time.Time) (Result, error) {
	if r.phase != Ready {
		return Result{}, fmt.Errorf("%w: confirm in %s", ErrWrongPhase, r.phase)
	}
	return r.Confirm(p, r.keypad.Value(), now)
}

// Confirm evaluates a charge. On success the round holds in SuccessCooldown,
// on failure in FailureFlash with the entry cleared.
func (r *Round) Confirm(p Policy, amount decimal.Decimal, now time.Time) (Result, error) {
	if r.phase != Ready {
		return Result{}, fmt.Errorf("%w: confirm in %s", ErrWrongPhase, r.phase)
	}
	r.phase = Evaluating
	res := Verify(p, r.customer.DesiredItems, amount)
	r.last = &res
	r.keypad.Reset()
	if res.OK() {
		r.phase = SuccessCooldown
		r.until = now.Add(p.SuccessHold)
	} else {
		r.phase = FailureFlash
		r.until = now.Add(p.FailureHold)
	}
	return res, nil
}

// Advance ends an expired hold. A finished success drops the customer and
// waits for the next scenario; a finished failure lets the player retry.
func (r *Round) Advance(now time.Time) Phase {
	if now.Before(r.until) {
		return r.phase
	}
	switch r.phase {
	case SuccessCooldown:
		r.customer = Customer{}
		r.selection.Clear()
		r.until = time.Time{}
		r.phase = AwaitingScenario
	case FailureFlash:
		r.until = time.Time{}
		r.phase = Ready
	}
	return r.phase
}
