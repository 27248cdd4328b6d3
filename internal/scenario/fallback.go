package scenario

import (
	"github.com/shopspring/decimal"

	"tonmaster/internal/game"
)

// fallbackCustomers are served whenever Gemini is not configured or fails.
var fallbackCustomers = []game.Customer{
	{
		ID:       "fb1",
		Name:     "Maria Santos",
		Avatar:   "https://picsum.photos/seed/maria/200",
		Dialogue: "Oi! Apenas um café e um croissant, por favor.",
		DesiredItems: []game.Product{
			{ID: "p1", Name: "Expresso", Price: decimal.RequireFromString("4.50")},
			{ID: "p2", Name: "Croissant", Price: decimal.RequireFromString("5.00")},
		},
	},
	{
		ID:       "fb2",
		Name:     "João Silva",
		Avatar:   "https://picsum.photos/seed/joao/200",
		Dialogue: "Preciso almoçar. Talvez um sanduíche e um refrigerante.",
		DesiredItems: []game.Product{
			{ID: "p3", Name: "Sanduíche de Presunto", Price: decimal.RequireFromString("12.00")},
			{ID: "p4", Name: "Refrigerante", Price: decimal.RequireFromString("4.00")},
		},
	},
}

// FallbackPool returns a copy of the bundled scenarios.
func FallbackPool() []game.Customer {
	out := make([]game.Customer, len(fallbackCustomers))
	for i, c := range fallbackCustomers {
		out[i] = c.Clone()
	}
	return out
}
