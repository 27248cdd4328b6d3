package game

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

// Only approved charges are recorded, so every entry is completed.
const StatusCompleted Status = "completed"

// Transaction is one entry of the merchant's sales history.
type Transaction struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Status       Status          `json:"status"`
}

// PlayerState is the whole game save. Values are treated as immutable: every
// change goes through one of the reducers below, which return a new state.
type PlayerState struct {
	MerchantName      string          `json:"merchantName"`
	Balance           decimal.Decimal `json:"balance"`
	XP                int             `json:"xp"`
	Level             int             `json:"level"`
	CompletedTutorial bool            `json:"completedTutorial"`
	UnlockedItems     []string        `json:"unlockedItems"`
	// Transactions are newest first.
	Transactions      []Transaction   `json:"transactions"`
}

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrAlreadyUnlocked   = errors.New("upgrade already unlocked")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrBlankName         = errors.New("merchant name is required")
)

// NewTransaction records a completed charge.
func NewTransaction(customerName string, amount decimal.Decimal, at time.Time) Transaction {
	return Transaction{
		ID:           "tx_" + uuid.NewString(),
		CustomerName: customerName,
		Amount:       amount,
		Date:         at.UTC(),
		Status:       StatusCompleted,
	}
}

// Clone deep-copies the slices so callers can't reach into the owner's state.
func (s PlayerState) Clone() PlayerState {
	out := s
	out.UnlockedItems = slices.Clone(s.UnlockedItems)
	out.Transactions = slices.Clone(s.Transactions)
	return out
}

// HasUnlocked reports whether the item id is in UnlockedItems.
func (s PlayerState) HasUnlocked(id string) bool {
	_, found := slices.BinarySearch(s.UnlockedItems, id)
	return found
}

// ApplyReward credits a successful round: balance and XP grow and tx is
// prepended as completed. Level is left alone.
func ApplyReward(s PlayerState, r Reward, tx Transaction) PlayerState {
	out := s.Clone()
	out.Balance = s.Balance.Add(r.Money)
	out.XP = s.XP + r.XP
	tx.Status = StatusCompleted
	out.Transactions = append([]Transaction{tx}, s.Transactions...)
	return out
}

// ApplyPurchase debits the upgrade cost and unlocks it.
func ApplyPurchase(s PlayerState, u Upgrade) (PlayerState, error) {
	if s.HasUnlocked(u.ID) {
		return s, ErrAlreadyUnlocked
	}
	if s.Balance.LessThan(u.Cost) {
		return s, ErrInsufficientFunds
	}
	out := s.Clone()
	out.Balance = s.Balance.Sub(u.Cost)
	out.UnlockedItems = unlock(out.UnlockedItems, u.ID)
	return out, nil
}

func CompleteTutorial(s PlayerState) PlayerState {
	out := s.Clone()
	out.CompletedTutorial = true
	return out
}

func Rename(s PlayerState, name string) (PlayerState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrBlankName
	}
	out := s.Clone()
	out.MerchantName = name
	return out, nil
}

// unlock inserts id keeping the slice sorted and free of duplicates.
func unlock(items []string, id string) []string {
	i, found := slices.BinarySearch(items, id)
	if found {
		return items
	}
	return slices.Insert(items, i, id)
}

// SeedPlayer is the starting save for a new session.
func SeedPlayer(now time.Time) PlayerState {
	return PlayerState{
		MerchantName:  "Michel Douglas Online",
		Balance:       decimal.RequireFromString("1250.75"),
		XP:            2500,
		Level:         15,
		UnlockedItems: []string{"basic_terminal"},
		Transactions: []Transaction{
			{ID: "tx1", CustomerName: "João Silva", Amount: decimal.RequireFromString("45.90"), Date: now.Add(-time.Hour).UTC(), Status: StatusCompleted},
			{ID: "tx2", CustomerName: "Ana Clara", Amount: decimal.RequireFromString("120.00"), Date: now.Add(-24 * time.Hour).UTC(), Status: StatusCompleted},
			{ID: "tx3", CustomerName: "Roberto Dias", Amount: decimal.RequireFromString("15.50"), Date: now.Add(-48 * time.Hour).UTC(), Status: StatusCompleted},
		},
	}
}
