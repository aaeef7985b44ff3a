package display

import (
	"github.com/angelmondragon/stallpos/internal/orders"
)

// Limits caps the call screen lists. Zero values fall back to the defaults.
type Limits struct {
	Ready  int
	Recent int
}

// CallView is the pickup-call screen: the ready queue, recent pickups and
// the ready orders still waiting to be announced.
type CallView struct {
	Ready   []orders.Order `json:"ready"`
	Recent  []orders.Order `json:"recent"`
	Pending []string       `json:"pending"`
}

// BuildCallView projects list onto the call screen. Only orders visible in
// the ready queue can be pending announcement.
func BuildCallView(list []orders.Order, limits Limits) CallView {
	view := CallView{
		Ready:   orders.ReadyQueue(list, limits.Ready),
		Recent:  orders.RecentPickups(list, limits.Recent),
		Pending: []string{},
	}
	for _, o := range view.Ready {
		if !o.ReadyAcknowledged {
			view.Pending = append(view.Pending, o.ID)
		}
	}
	return view
}
