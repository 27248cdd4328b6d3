package game

import "github.com/shopspring/decimal"

// Upgrade is an item sold in the merchant store.
type Upgrade struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

var upgrades = []Upgrade{
	{ID: "u1", Title: "Processamento Rápido", Description: "Reduza o tempo de transação em 50%.", Cost: decimal.NewFromInt(500)},
	{ID: "u2", Title: "Layout da Loja", Description: "Personalize seu tema visual.", Cost: decimal.NewFromInt(800)},
	{ID: "u3", Title: "Gerenciador de Descontos", Description: "Crie cupons de fidelidade.", Cost: decimal.NewFromInt(350)},
	{ID: "u4", Title: "Controle de Estoque", Description: "Reposição automática de itens populares.", Cost: decimal.NewFromInt(1200)},
}

// Upgrades lists the store catalog.
func Upgrades() []Upgrade {
	return append([]Upgrade(nil), upgrades...)
}

func FindUpgrade(id string) (Upgrade, error) {
	for _, u := range upgrades {
		if u.ID == id {
			return u, nil
		}
	}
	return Upgrade{}, ErrUnknownUpgrade
}
