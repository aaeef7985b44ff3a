package orders

import (
	"encoding/json"

	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// Patch is a partial administrative update. Nil pointers and false Has*
// flags mean the field was absent from the request.
type Patch struct {
	Status            *enums.OrderStatus
	StatusHistory     []StatusEntry
	HasStatusHistory  bool
	ReadyAcknowledged *bool
	PickedUpAt        *int64
	HasPickedUpAt     bool
	CustomerName      *string
}

// DecodePatch reads a PATCH body. Unknown fields are ignored; a status the
// flow does not contain is rejected before anything is applied.
func DecodePatch(raw []byte, flow Flow) (Patch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Patch{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid json body")
	}

	var p Patch
	if v, ok := fields["status"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Patch{}, pkgerrors.New(pkgerrors.CodeValidation, "status must be a string")
		}
		status, ok := flow.Parse(s)
		if !ok {
			return Patch{}, invalidStatus(enums.OrderStatus(s))
		}
		p.Status = &status
	}
	if v, ok := fields["statusHistory"]; ok {
		var list coerce.List
		if err := json.Unmarshal(v, &list); err != nil {
			return Patch{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "statusHistory must be an array")
		}
		p.HasStatusHistory = true
		p.StatusHistory = SanitizeHistory(list, flow)
	}
	if v, ok := fields["readyAcknowledged"]; ok {
		ack := coerce.Truthy(decodeAny(v))
		p.ReadyAcknowledged = &ack
	}
	if v, ok := fields["pickedUpAt"]; ok {
		p.HasPickedUpAt = true
		value := decodeAny(v)
		if coerce.Truthy(value) {
			if at, ok := coerce.Int(value); ok && at > 0 {
				p.PickedUpAt = &at
			}
		}
	}
	if v, ok := fields["customerName"]; ok {
		name := coerce.String(decodeAny(v))
		p.CustomerName = &name
	}
	return p, nil
}

// Empty reports whether the patch changes nothing but updatedAt.
func (p Patch) Empty() bool {
	return p.Status == nil && !p.HasStatusHistory && p.ReadyAcknowledged == nil &&
		!p.HasPickedUpAt && p.CustomerName == nil
}

// ApplyPatch merges p into the order. A non-empty history wins over a bare
// status; explicit flag fields are applied after status side effects.
func (e *Engine) ApplyPatch(o *Order, p Patch) error {
	if p.Status != nil && !e.flow.Contains(*p.Status) {
		return invalidStatus(*p.Status)
	}
	switch {
	case p.HasStatusHistory && len(p.StatusHistory) > 0:
		last := p.StatusHistory[len(p.StatusHistory)-1]
		if err := e.SetStatus(o, last.Status, p.StatusHistory); err != nil {
			return err
		}
	case p.Status != nil && *p.Status != o.Status:
		if err := e.SetStatus(o, *p.Status, nil); err != nil {
			return err
		}
	}
	if p.ReadyAcknowledged != nil {
		o.ReadyAcknowledged = *p.ReadyAcknowledged
	}
	if p.HasPickedUpAt {
		if p.PickedUpAt == nil {
			o.PickedUpAt = nil
		} else {
			at := *p.PickedUpAt
			o.PickedUpAt = &at
		}
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	o.UpdatedAt = e.Now()
	return nil
}

func decodeAny(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
