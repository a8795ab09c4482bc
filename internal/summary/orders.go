package summary

import (
	"github.com/shopspring/decimal"

	"github.com/nhle/order-incidents/internal/model"
)

// OrderGroup is every line of one order with the order-level fields taken
// from its first line.
type OrderGroup struct {
	OrderNumber string
	Email       string
	Club        string
	OrderDate   model.Timestamp
	Lines       []model.OrderLine
	Total       decimal.Decimal
	// Checked counts lines ticked on the delivery note.
	Checked int
}

// Complete reports whether every line of the order is ticked.
func (g OrderGroup) Complete() bool {
	return len(g.Lines) > 0 && g.Checked == len(g.Lines)
}

// GroupOrders groups lines by order number in first-seen order.
func GroupOrders(lines []model.OrderLine) []OrderGroup {
	pos := make(map[string]int)
	var groups []OrderGroup
	for _, l := range lines {
		i, ok := pos[l.OrderNumber]
		if !ok {
			i = len(groups)
			pos[l.OrderNumber] = i
			groups = append(groups, OrderGroup{
				OrderNumber: l.OrderNumber,
				Email:       l.Email,
				Club:        l.Club,
				OrderDate:   l.OrderDate,
				Total:       decimal.Zero,
			})
		}
		g := &groups[i]
		g.Lines = append(g.Lines, l)
		g.Total = g.Total.Add(l.Price)
		if l.Checked {
			g.Checked++
		}
	}
	return groups
}
