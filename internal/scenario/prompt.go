package scenario

import (
	"fmt"

	"tonmaster/internal/game"
)

const promptTemplate = `Generate a random customer for a shop simulation game.
Difficulty: %s.
Language: Portuguese (Brazil).
Return JSON with:
- name (string, Portuguese names)
- dialogue (string, a short greeting asking for specific items in Portuguese)
- desiredItems (array of objects with name (in Portuguese) and price. Price should be a number. %d-%d items.)

Example format:
{
  "name": "Alice",
  "dialogue": "Oi, eu gostaria de um café.",
  "desiredItems": [{"name": "Café", "price": 3.50}, {"name": "Pão de queijo", "price": 6.00}]
}`

func buildPrompt(d game.Difficulty) string {
	return fmt.Sprintf(promptTemplate, d, MinItems, MaxItems)
}
