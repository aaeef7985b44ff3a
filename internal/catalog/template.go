package catalog

import (
	"fmt"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

// Choice is one selectable value of a choice option.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Short string `json:"short,omitempty"`
}

// Option describes one customizable aspect of a product. Default holds a bool
// for toggles and a string for levels and choices.
type Option struct {
	ID      string           `json:"id"`
	Label   string           `json:"label"`
	Kind    enums.OptionKind `json:"type"`
	Short   string           `json:"short,omitempty"`
	Levels  []string         `json:"levels,omitempty"`
	Choices []Choice         `json:"options,omitempty"`
	Default any              `json:"default"`
}

// DisplayLabel is the label used on cart rows and kitchen tickets.
func (o Option) DisplayLabel() string {
	if o.Short != "" {
		return o.Short
	}
	return o.Label
}

// DefaultOn returns the default of a toggle option.
func (o Option) DefaultOn() bool {
	on, _ := o.Default.(bool)
	return on
}

// DefaultValue returns the default of a level or choice option.
func (o Option) DefaultValue() string {
	value, _ := o.Default.(string)
	return value
}

// NeutralLevel is the middle of the configured levels; selections at this level
// are not worth calling out.
func (o Option) NeutralLevel() string {
	if len(o.Levels) == 0 {
		return o.DefaultValue()
	}
	return o.Levels[len(o.Levels)/2]
}

// FindChoice returns the choice whose value matches.
func (o Option) FindChoice(value string) (Choice, bool) {
	for _, choice := range o.Choices {
		if choice.Value == value {
			return choice, true
		}
	}
	return Choice{}, false
}

func (o Option) clone() Option {
	out := o
	if o.Levels != nil {
		out.Levels = append([]string(nil), o.Levels...)
	}
	if o.Choices != nil {
		out.Choices = append([]Choice(nil), o.Choices...)
	}
	return out
}

// Template is a named, reusable set of options shared by several products.
type Template struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

func (t Template) clone() Template {
	out := t
	out.Options = make([]Option, len(t.Options))
	for i, opt := range t.Options {
		out.Options[i] = opt.clone()
	}
	return out
}

// Registry resolves option templates by id. The first registered template is
// the fallback for unknown ids and must carry no options.
type Registry struct {
	templates []Template
	index     map[string]int
}

// NewRegistry validates and registers templates in order.
func NewRegistry(templates ...Template) (*Registry, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("at least one option template required")
	}
	if len(templates[0].Options) != 0 {
		return nil, fmt.Errorf("fallback template %q must not define options", templates[0].ID)
	}
	reg := &Registry{
		templates: make([]Template, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
	}
	for _, tpl := range templates {
		if tpl.ID == "" {
			return nil, fmt.Errorf("option template id required")
		}
		if _, dup := reg.index[tpl.ID]; dup {
			return nil, fmt.Errorf("duplicate option template %q", tpl.ID)
		}
		for _, opt := range tpl.Options {
			if err := validateOption(tpl.ID, opt); err != nil {
				return nil, err
			}
		}
		reg.index[tpl.ID] = len(reg.templates)
		reg.templates = append(reg.templates, tpl.clone())
	}
	return reg, nil
}

func validateOption(templateID string, opt Option) error {
	if opt.ID == "" {
		return fmt.Errorf("template %q: option id required", templateID)
	}
	switch opt.Kind {
	case enums.OptionKindToggle:
		if _, ok := opt.Default.(bool); !ok {
			return fmt.Errorf("template %q: toggle %q needs a bool default", templateID, opt.ID)
		}
	case enums.OptionKindLevel:
		if len(opt.Levels) == 0 {
			return fmt.Errorf("template %q: level %q needs levels", templateID, opt.ID)
		}
	case enums.OptionKindChoice:
		if _, ok := opt.FindChoice(opt.DefaultValue()); !ok {
			return fmt.Errorf("template %q: choice %q default is not one of its options", templateID, opt.ID)
		}
	default:
		return fmt.Errorf("template %q: option %q has unknown type %q", templateID, opt.ID, opt.Kind)
	}
	return nil
}

// Templates returns copies of every registered template in registration order.
func (r *Registry) Templates() []Template {
	out := make([]Template, len(r.templates))
	for i, tpl := range r.templates {
		out[i] = tpl.clone()
	}
	return out
}

// Has reports whether id names a registered template.
func (r *Registry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Resolve returns a copy of the template registered under id, falling back to
// the first registered template.
func (r *Registry) Resolve(id string) Template {
	if i, ok := r.index[id]; ok {
		return r.templates[i].clone()
	}
	return r.templates[0].clone()
}

// ProductView is a stored product joined with its live option definitions.
type ProductView struct {
	Product
	Options []Option `json:"options"`
}

// ResolveOptions attaches the product's template options.
func (r *Registry) ResolveOptions(p Product) ProductView {
	return ProductView{
		Product: p,
		Options: r.Resolve(p.OptionTemplate).Options,
	}
}
