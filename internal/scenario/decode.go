package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tonmaster/internal/game"
)

// Bounds on the number of items a generated customer may ask for.
const (
	MinItems = 2
	MaxItems = 5
)

const (
	defaultName     = "Cliente"
	defaultDialogue = "Olá! Gostaria de fazer um pedido."
)

type rawScenario struct {
	Name         string    `json:"name"`
	Dialogue     string    `json:"dialogue"`
	DesiredItems []rawItem `json:"desiredItems"`
}

type rawItem struct {
	Name  string          `json:"name"`
	Price json.RawMessage `json:"price"`
}

// decodeScenario checks the model output against the expected shape and only
// then coerces it into a Customer.
func decodeScenario(text string, now time.Time) (game.Customer, error) {
	body := stripFences(text)
	if body == "" {
		return game.Customer{}, ErrEmptyResponse
	}

	var raw rawScenario
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return game.Customer{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	n := len(raw.DesiredItems)
	if n < MinItems || n > MaxItems {
		return game.Customer{}, fmt.Errorf("%w: %d desired items, want %d-%d", ErrSchema, n, MinItems, MaxItems)
	}
	products := make([]game.Product, n)
	for i, it := range raw.DesiredItems {
		price, err := parsePrice(it.Price)
		if err != nil {
			return game.Customer{}, fmt.Errorf("%w: item %d: %v", ErrSchema, i, err)
		}
		products[i] = game.Product{
			ID:    fmt.Sprintf("gen_%d", i),
			Name:  orDefault(it.Name, fmt.Sprintf("Item %d", i+1)),
			Price: price,
		}
	}

	name := orDefault(raw.Name, defaultName)
	return game.Customer{
		ID:           fmt.Sprintf("ai_%d", now.UnixMilli()),
		Name:         name,
		Avatar:       AvatarURL(name),
		Dialogue:     orDefault(raw.Dialogue, defaultDialogue),
		DesiredItems: products,
	}, nil
}

// parsePrice accepts a JSON number or a numeric string ("4.50" or "4,50").
func parsePrice(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, fmt.Errorf("price missing")
	}
	lit := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, err
		}
		lit = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %s: %w", raw, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("price %s is negative", d)
	}
	return d, nil
}

// AvatarURL derives a stable placeholder portrait from the customer name.
func AvatarURL(name string) string {
	seed := strings.Join(strings.Fields(name), "")
	if seed == "" {
		seed = defaultName
	}
	return "https://picsum.photos/seed/" + url.PathEscape(seed) + "/200"
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
