package game

import "github.com/shopspring/decimal"

// Selection is the set of items the player has tapped. It only feeds the
// "selected total" display; Verify never looks at it.
type Selection struct {
	order  []string
	picked map[string]Product
}

// Toggle adds p when absent and removes it when present. It reports whether p
// is selected afterwards.
func (s *Selection) Toggle(p Product) bool {
	if s.picked == nil {
		s.picked = make(map[string]Product)
	}
	if _, ok := s.picked[p.ID]; ok {
		delete(s.picked, p.ID)
		for i, id := range s.order {
			if id == p.ID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return false
	}
	s.picked[p.ID] = p
	s.order = append(s.order, p.ID)
	return true
}

// Items returns the selected products in the order they were picked.
func (s *Selection) Items() []Product {
	out := make([]Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.picked[id])
	}
	return out
}

// Total is the display total of the selection.
func (s *Selection) Total() decimal.Decimal {
	return Sum(s.Items())
}

// Clear drops every selected item.
func (s *Selection) Clear() {
	s.order = nil
	s.picked = nil
}
