package store

import (
	"encoding/json"

	"github.com/angelmondragon/stallpos/internal/catalog"
	"github.com/angelmondragon/stallpos/internal/orders"
	"github.com/angelmondragon/stallpos/pkg/coerce"
)

// counterModulus bounds currentOrderNumber; numbers run 0001..9999.
const counterModulus = 9999

// State is the persisted document.
type State struct {
	Pause              bool            `json:"pause"`
	CurrentOrderNumber int64           `json:"currentOrderNumber"`
	Catalog            catalog.Catalog `json:"catalog"`
	Orders             []orders.Order  `json:"orders"`
}

// Clone deep-copies the state.
func (s State) Clone() State {
	return State{
		Pause:              s.Pause,
		CurrentOrderNumber: s.CurrentOrderNumber,
		Catalog:            s.Catalog.Clone(),
		Orders:             orders.CloneAll(s.Orders),
	}
}

// rawState is the document as read back, before sanitization.
type rawState struct {
	Pause              any             `json:"pause"`
	CurrentOrderNumber any             `json:"currentOrderNumber"`
	Catalog            json.RawMessage `json:"catalog"`
	Orders             coerce.List     `json:"orders"`
}

func seedState() State {
	return State{
		Catalog: catalog.DefaultCatalog(),
		Orders:  []orders.Order{},
	}
}

// decodeState parses and sanitizes a stored document. It reports false when
// the bytes are not a JSON object at all.
func decodeState(data []byte, engine *orders.Engine) (State, bool) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, false
	}
	return State{
		Pause:              coerce.Truthy(raw.Pause),
		CurrentOrderNumber: normalizeCounter(raw.CurrentOrderNumber),
		Catalog:            catalog.SanitizeCatalog(catalog.DecodeInput(raw.Catalog)),
		Orders:             engine.SanitizeAll(raw.Orders),
	}, true
}

func encodeState(s State) ([]byte, error) {
	if s.Orders == nil {
		s.Orders = []orders.Order{}
	}
	if s.Catalog.Products == nil {
		s.Catalog.Products = []catalog.Product{}
	}
	return json.MarshalIndent(s, "", "  ")
}

func normalizeCounter(v any) int64 {
	n, ok := coerce.Int(v)
	if !ok {
		return 0
	}
	n %= counterModulus
	if n < 0 {
		n += counterModulus
	}
	return n
}

// nextCounter increments before formatting so 0000 is never issued.
func nextCounter(current int64) int64 {
	return current%counterModulus + 1
}
