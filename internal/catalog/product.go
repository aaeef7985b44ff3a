package catalog

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/stallpos/pkg/coerce"
	"github.com/angelmondragon/stallpos/pkg/enums"
	pkgerrors "github.com/angelmondragon/stallpos/pkg/errors"
)

// PlaceholderImage is shown for products saved without an image.
const PlaceholderImage = "https://placehold.co/400x300?text=No+Image"

// Product is a sellable menu entry.
type Product struct {
	ID             string                `json:"id"`
	Category       enums.ProductCategory `json:"category"`
	Name           string                `json:"name"`
	Price          int64                 `json:"price"`
	Image          string                `json:"image"`
	OptionTemplate string                `json:"optionTemplate"`
	Description    string                `json:"description"`
	ImageName      string                `json:"imageName"`
}

// Catalog is the full product list.
type Catalog struct {
	Products []Product `json:"products"`
}

// Clone returns a copy that shares no slices with c.
func (c Catalog) Clone() Catalog {
	out := Catalog{Products: make([]Product, len(c.Products))}
	copy(out.Products, c.Products)
	return out
}

// Find returns the product with the given id.
func (c Catalog) Find(id string) (Product, bool) {
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ProductInput is a product as received from a client or an older snapshot.
type ProductInput struct {
	ID             any `json:"id"`
	Category       any `json:"category"`
	Name           any `json:"name"`
	Price          any `json:"price"`
	Image          any `json:"image"`
	OptionTemplate any `json:"optionTemplate"`
	Description    any `json:"description"`
	ImageName      any `json:"imageName"`
}

// Input converts a stored product back into its input form.
func (p Product) Input() ProductInput {
	return ProductInput{
		ID:             p.ID,
		Category:       string(p.Category),
		Name:           p.Name,
		Price:          float64(p.Price),
		Image:          p.Image,
		OptionTemplate: p.OptionTemplate,
		Description:    p.Description,
		ImageName:      p.ImageName,
	}
}

// Input is a catalog document as received from a client or an older snapshot.
type Input struct {
	Products coerce.List `json:"products"`
}

// DecodeInput parses a catalog document. Anything that is not an object with
// a products array comes back with Products.Valid == false.
func DecodeInput(raw []byte) Input {
	var in Input
	if len(raw) == 0 {
		return in
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return Input{}
	}
	return in
}

// Input converts a stored catalog back into its input form.
func (c Catalog) Input() Input {
	inputs := make([]ProductInput, len(c.Products))
	for i, p := range c.Products {
		inputs[i] = p.Input()
	}
	list, err := coerce.NewList(inputs)
	if err != nil {
		return Input{}
	}
	return Input{Products: list}
}

// OptionTemplateForCategory maps a category to the template new products get
// when none is chosen explicitly.
func OptionTemplateForCategory(category enums.ProductCategory) string {
	switch category {
	case enums.ProductCategoryPancake:
		return "pancake-standard"
	case enums.ProductCategoryCrepe:
		return "crepe-standard"
	case enums.ProductCategorySausage:
		return "sausage-standard"
	default:
		return NoOptionsTemplateID
	}
}

// SanitizeProduct fills defaults and clamps the price of one product.
func SanitizeProduct(in ProductInput) Product {
	category := SanitizeCategory(in.Category)
	id := strings.TrimSpace(coerce.String(in.ID))
	if id == "" {
		id = uuid.NewString()
	}
	image := coerce.String(in.Image)
	if image == "" {
		image = PlaceholderImage
	}
	optionTemplate := coerce.String(in.OptionTemplate)
	if optionTemplate == "" {
		optionTemplate = OptionTemplateForCategory(category)
	}
	return Product{
		ID:             id,
		Category:       category,
		Name:           coerce.String(in.Name),
		Price:          coerce.NonNegativeInt(in.Price),
		Image:          image,
		OptionTemplate: optionTemplate,
		Description:    coerce.String(in.Description),
		ImageName:      coerce.String(in.ImageName),
	}
}

// SanitizeCategory parses a category, defaulting unknown values.
func SanitizeCategory(v any) enums.ProductCategory {
	category, err := enums.ParseProductCategory(coerce.String(v))
	if err != nil {
		return enums.DefaultProductCategory
	}
	return category
}

// SanitizeCatalog turns any catalog input into a valid catalog. A missing or
// non-array products list yields the seed catalog; later duplicates of an id
// are dropped. Sanitizing an already sanitized catalog returns it unchanged.
func SanitizeCatalog(in Input) Catalog {
	if !in.Products.Valid {
		return DefaultCatalog()
	}
	seen := make(map[string]struct{}, len(in.Products.Items))
	products := make([]Product, 0, len(in.Products.Items))
	coerce.Each(in.Products, func(raw *ProductInput) {
		if raw == nil {
			return
		}
		p := SanitizeProduct(*raw)
		if _, dup := seen[p.ID]; dup {
			return
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	})
	return Catalog{Products: products}
}

// ValidateUniqueIDs rejects catalog writes that reuse a product id.
func ValidateUniqueIDs(in Input) error {
	counts := map[string]int{}
	coerce.Each(in.Products, func(raw *ProductInput) {
		if raw == nil {
			return
		}
		if id := strings.TrimSpace(coerce.String(raw.ID)); id != "" {
			counts[id]++
		}
	})
	var dups []string
	for id, n := range counts {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product ids").
		WithDetails(map[string]any{"ids": dups})
}
