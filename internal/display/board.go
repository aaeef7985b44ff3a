package display

import (
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/enums"
)

// Column is one kitchen board lane.
type Column struct {
	Status enums.OrderStatus `json:"status"`
	Orders []orders.Order    `json:"orders"`
}

// Board is the kitchen display: one column per non-terminal status of the
// active flow.
type Board struct {
	Flow    []enums.OrderStatus `json:"flow"`
	Columns []Column            `json:"columns"`
}

// BuildBoard lays out list on the kitchen board. Orders in each column are
// sorted by the time they entered the column. filter.Status is ignored since
// the columns already split by status.
func BuildBoard(flow orders.Flow, list []orders.Order, filter orders.Filter) Board {
	filter.Status = ""
	visible := filter.Apply(list)

	board := Board{Flow: flow.Statuses(), Columns: []Column{}}
	for _, status := range flow.Board() {
		board.Columns = append(board.Columns, Column{
			Status: status,
			Orders: orders.WithStatus(visible, status),
		})
	}
	return board
}

// Count returns the number of orders on the board.
func (b Board) Count() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Orders)
	}
	return n
}
