package enums

import "fmt"

// ProductCategory represents the stall's menu sections.
type ProductCategory string

const (
	ProductCategoryPancake ProductCategory = "pancake"
	ProductCategoryCrepe   ProductCategory = "crepe"
	ProductCategorySausage ProductCategory = "sausage"
	ProductCategoryDrink   ProductCategory = "drink"
)

// DefaultProductCategory is used when a product or item carries no usable category.
const DefaultProductCategory = ProductCategoryPancake

var validProductCategories = []ProductCategory{
	ProductCategoryPancake,
	ProductCategoryCrepe,
	ProductCategorySausage,
	ProductCategoryDrink,
}

// ProductCategories returns the categories in menu order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}
