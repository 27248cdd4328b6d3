package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tonmaster/internal/game"
	"tonmaster/internal/logging"
)

var (
	ErrFetchInFlight  = errors.New("a scenario is already being fetched")
	ErrRoundDiscarded = errors.New("round was closed before the scenario arrived")
	ErrNoRound        = errors.New("no round in progress")
	ErrRoundActive    = errors.New("current round is not finished")
)

// ScenarioSource is what the controller needs from the scenario package.
type ScenarioSource interface {
	Fetch(ctx context.Context, d game.Difficulty) game.Customer
}

// WinFunc is called once per successful round, after the reward is applied.
type WinFunc func(reward game.Reward, customerName string, total decimal.Decimal)

// Controller owns the player state and the round on screen. It is the only
// writer of PlayerState; every change goes through a game reducer under mu.
type Controller struct {
	source ScenarioSource
	policy game.Policy
	now    func() time.Time
	log    *slog.Logger
	onWin  WinFunc

	mu       sync.Mutex
	state    game.PlayerState
	round    *game.Round
	fetching bool
	// epoch changes whenever the round is torn down, so late fetches can tell.
	epoch uint64
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.log = l } }

// OnWin registers a hook for successful rounds.
func OnWin(fn WinFunc) Option { return func(c *Controller) { c.onWin = fn } }

func New(initial game.PlayerState, source ScenarioSource, policy game.Policy, opts ...Option) *Controller {
	c := &Controller{
		source: source,
		policy: policy,
		now:    time.Now,
		state:  initial.Clone(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.log == nil {
		c.log = logging.New("session")
	}
	return c
}

func (c *Controller) Policy() game.Policy { return c.policy }

// State returns a copy of the current player state.
func (c *Controller) State() game.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// StartRound fetches the next customer and puts it on screen. Only one fetch
// may be in flight; a round still in progress has to finish or be exited.
func (c *Controller) StartRound(ctx context.Context) (game.Customer, error) {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return game.Customer{}, ErrFetchInFlight
	}
	if c.round != nil && c.round.Advance(c.now()) != game.AwaitingScenario {
		c.mu.Unlock()
		return game.Customer{}, ErrRoundActive
	}
	if c.round == nil {
		c.round = game.NewRound()
	}
	c.fetching = true
	epoch := c.epoch
	difficulty := game.DifficultyForLevel(c.state.Level)
	c.mu.Unlock()

	customer := c.source.Fetch(ctx, difficulty)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if epoch != c.epoch || c.round == nil {
		c.log.Debug("discarding scenario for closed round", "customer", customer.Name)
		return game.Customer{}, ErrRoundDiscarded
	}
	if err := c.round.Present(customer); err != nil {
		return game.Customer{}, err
	}
	c.log.Info("round started", "customer", customer.Name, "difficulty", difficulty, "items", len(customer.DesiredItems), "total", customer.Total())
	return customer.Clone(), nil
}

// Snapshot describes the round as the screen should draw it.
type Snapshot struct {
	Phase         game.Phase      `json:"phase"`
	Loading       bool            `json:"loading"`
	Customer      *game.Customer  `json:"customer,omitempty"`
	Selected      []string        `json:"selected"`
	SelectedTotal decimal.Decimal `json:"selectedTotal"`
	Display       string          `json:"display"`
	HoldUntil     *time.Time      `json:"holdUntil,omitempty"`
	Last          *game.Result    `json:"lastResult,omitempty"`
}

func (c *Controller) Round() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		if c.fetching {
			return Snapshot{Phase: game.AwaitingScenario, Loading: true, Display: "0"}, nil
		}
		return Snapshot{}, ErrNoRound
	}
	return c.snapshotLocked(), nil
}

func (c *Controller) snapshotLocked() Snapshot {
	r := c.round
	s := Snapshot{
		Phase:         r.Advance(c.now()),
		Loading:       c.fetching,
		Selected:      []string{},
		SelectedTotal: r.SelectedTotal(),
		Display:       r.Display(),
	}
	if cust, ok := r.Customer(); ok {
		s.Customer = &cust
	}
	for _, p := range r.Selected() {
		s.Selected = append(s.Selected, p.ID)
	}
	if until := r.HoldUntil(); !until.IsZero() {
		s.HoldUntil = &until
	}
	if last, ok := r.LastResult(); ok {
		s.Last = &last
	}
	return s
}

// Toggle flips an item in the cosmetic selection.
func (c *Controller) Toggle(productID string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return Snapshot{}, ErrNoRound
	}
	c.round.Advance(c.now())
	if _, err := c.round.Toggle(productID); err != nil {
		return Snapshot{}, err
	}
	return c.snapshotLocked(), nil
}

// Press types keys on the terminal keypad.
func (c *Controller) Press(keys ...string) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round == nil {
		return Snapshot{}, ErrNoRound
	}
	c.round.Advance(c.now())
	if err := c.round.Press(keys...); err != nil {
		return Snapshot{}, err
	}
	return c.snapshotLocked(), nil
}

// Charge verifies an amount against the customer on screen. A success is
// merged into the player state before Charge returns.
func (c *Controller) Charge(amount decimal.Decimal) (game.Result, error) {
	return c.confirm(func(r *game.Round, now time.Time) (game.Result, error) {
		return r.Confirm(c.policy, amount, now)
	})
}

// ChargeKeypad charges whatever the keypad shows.
func (c *Controller) ChargeKeypad() (game.Result, error) {
	return c.confirm(func(r *game.Round, now time.Time) (game.Result, error) {
		return r.ConfirmKeypad(c.policy, now)
	})
}

// PressAndCharge types keys and charges the result in one step. Nothing is
// typed when a key is rejected.
func (c *Controller) PressAndCharge(keys ...string) (game.Result, error) {
	return c.confirm(func(r *game.Round, now time.Time) (game.Result, error) {
		if err := r.Press(keys...); err != nil {
			return game.Result{}, err
		}
		return r.ConfirmKeypad(c.policy, now)
	})
}

func (c *Controller) confirm(fn func(*game.Round, time.Time) (game.Result, error)) (game.Result, error) {
	c.mu.Lock()
	if c.round == nil {
		c.mu.Unlock()
		return game.Result{}, ErrNoRound
	}
	now := c.now()
	c.round.Advance(now)
	customer, _ := c.round.Customer()
	res, err := fn(c.round, now)
	if err != nil {
		c.mu.Unlock()
		return game.Result{}, err
	}
	if !res.OK() {
		c.mu.Unlock()
		chargesTotal.WithLabelValues(string(game.Failure)).Inc()
		c.log.Info("charge declined", "customer", customer.Name, "expected", res.Expected, "entered", res.Entered)
		return res, nil
	}

	tx := game.NewTransaction(customer.Name, res.Entered, now)
	c.state = game.ApplyReward(c.state, res.Reward, tx)
	onWin := c.onWin
	c.mu.Unlock()

	chargesTotal.WithLabelValues(string(game.Success)).Inc()
	rewardMoney.Add(res.Reward.Money.InexactFloat64())
	c.log.Info("charge approved", "customer", customer.Name, "amount", res.Entered, "reward", res.Reward.Money, "xp", res.Reward.XP)
	if onWin != nil {
		onWin(res.Reward, customer.Name, res.Entered)
	}
	return res, nil
}

// Exit leaves the game screen. Player state is not touched; a fetch still in
// flight will be discarded when it lands.
func (c *Controller) Exit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.round = nil
	c.epoch++
}

// Purchase buys a store upgrade.
func (c *Controller) Purchase(upgradeID string) (game.PlayerState, error) {
	u, err := game.FindUpgrade(upgradeID)
	if err != nil {
		return game.PlayerState{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := game.ApplyPurchase(c.state, u)
	if err != nil {
		return game.PlayerState{}, err
	}
	c.state = next
	c.log.Info("upgrade purchased", "upgrade", u.ID, "cost", u.Cost, "balance", next.Balance)
	return next.Clone(), nil
}

func (c *Controller) Rename(name string) (game.PlayerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := game.Rename(c.state, name)
	if err != nil {
		return game.PlayerState{}, err
	}
	c.state = next
	return next.Clone(), nil
}

func (c *Controller) CompleteTutorial() game.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = game.CompleteTutorial(c.state)
	return c.state.Clone()
}
