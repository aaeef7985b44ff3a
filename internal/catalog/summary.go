package catalog

import (
	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/enums"
)

// Selections maps option ids to the chosen value: a bool for toggles, a string
// for levels and choices.
type Selections map[string]any

// Clone copies the top-level map.
func (s Selections) Clone() Selections {
	if s == nil {
		return Selections{}
	}
	out := make(Selections, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SummarizeSelections lists short labels for every selection worth calling
// out, in template option order. Toggles appear when on, levels when off the
// neutral level, and choices always.
func (r *Registry) SummarizeSelections(p Product, selections Selections) []string {
	tpl := r.Resolve(p.OptionTemplate)
	summary := []string{}
	for _, opt := range tpl.Options {
		value, present := selections[opt.ID]
		switch opt.Kind {
		case enums.OptionKindToggle:
			active := opt.DefaultOn()
			if present && value != nil {
				active = coerce.Truthy(value)
			}
			if active {
				summary = append(summary, opt.DisplayLabel())
			}
		case enums.OptionKindLevel:
			chosen := coerce.String(value)
			if chosen == "" {
				chosen = opt.DefaultValue()
			}
			if chosen != opt.NeutralLevel() {
				summary = append(summary, opt.DisplayLabel()+":"+chosen)
			}
		case enums.OptionKindChoice:
			chosen := coerce.String(value)
			if chosen == "" {
				chosen = opt.DefaultValue()
			}
			if found, ok := opt.FindChoice(chosen); ok {
				label := found.Short
				if label == "" {
					label = found.Label
				}
				summary = append(summary, label)
			}
		}
	}
	return summary
}
