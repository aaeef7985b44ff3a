package catalog

import (
	"fmt"

	"github.com/angelmondragon/stallpos/pkg/enums"
)

// NoOptionsTemplateID is the fallback template; it is always registered first.
const NoOptionsTemplateID = "none"

// Category describes a menu section and its POS shortcut key.
type Category struct {
	ID       enums.ProductCategory `json:"id"`
	Name     string                `json:"name"`
	Short    string                `json:"short"`
	Shortcut string                `json:"shortcut"`
}

var categories = []Category{
	{ID: enums.ProductCategoryPancake, Name: "パンケーキ", Short: "パンケーキ", Shortcut: "F1"},
	{ID: enums.ProductCategoryCrepe, Name: "クレープ", Short: "クレープ", Shortcut: "F2"},
	{ID: enums.ProductCategorySausage, Name: "ソーセージ", Short: "ソーセージ", Shortcut: "F3"},
	{ID: enums.ProductCategoryDrink, Name: "ドリンク", Short: "ドリンク", Shortcut: "F4"},
}

// Categories lists the menu sections in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

var standardLevels = []string{"少", "普", "多"}

func level(id, label, short string) Option {
	return Option{ID: id, Label: label, Kind: enums.OptionKindLevel, Short: short, Levels: standardLevels, Default: "普"}
}

func toggle(id, label, short string, on bool) Option {
	return Option{ID: id, Label: label, Kind: enums.OptionKindToggle, Short: short, Default: on}
}

func choice(id, label, def string, choices ...Choice) Option {
	return Option{ID: id, Label: label, Kind: enums.OptionKindChoice, Choices: choices, Default: def}
}

var syrupChoice = choice("syrup", "シロップ", "choco",
	Choice{Value: "choco", Label: "チョコ", Short: "チョコ"},
	Choice{Value: "cream", Label: "クリーム", Short: "クリーム"},
)

var defaultTemplates = []Template{
	{
		ID:          NoOptionsTemplateID,
		Label:       "オプションなし",
		Description: "追加オプションを設定しない商品",
		Options:     []Option{},
	},
	{
		ID:          "pancake-standard",
		Label:       "パンケーキ標準",
		Description: "追いホイップやソース濃度など",
		Options: []Option{
			toggle("extra-whip", "追いホイップ", "追ホ", false),
			level("choco", "チョコソース", "チョコ"),
			level("maple", "メープル", "メープル"),
			toggle("powder", "粉糖", "粉糖", true),
		},
	},
	{
		ID:          "crepe-standard",
		Label:       "クレープ標準",
		Description: "ホイップ量・ソース量・包みかた",
		Options: []Option{
			level("whip", "ホイップ", "ホイップ"),
			level("sauce", "ソース", "ソース"),
			choice("wrap", "包みかた", "tight",
				Choice{Value: "tight", Label: "タイト", Short: "タイト"},
				Choice{Value: "loose", Label: "ゆるめ", Short: "ゆるめ"},
			),
		},
	},
	{
		ID:          "sausage-standard",
		Label:       "ソーセージ標準",
		Description: "ケチャップとマスタードの有無",
		Options: []Option{
			toggle("ketchup", "ケチャップ", "ケチャップ", true),
			toggle("mustard", "マスタード", "マスタード", true),
		},
	},
	{
		ID:          "pancake-simple",
		Label:       "パンケーキ（シンプル）",
		Description: "チョコ or クリームシロップを選択",
		Options:     []Option{syrupChoice},
	},
	{
		ID:          "crepe-simple",
		Label:       "クレープ（シンプル）",
		Description: "チョコ or クリームシロップを選択",
		Options:     []Option{syrupChoice},
	},
	{
		ID:          "crepe-savory-simple",
		Label:       "クレープ（おかず系）",
		Description: "マヨネーズ or ケチャップを選択",
		Options: []Option{
			choice("sauce", "ソース", "mayo",
				Choice{Value: "mayo", Label: "マヨネーズ", Short: "マヨ"},
				Choice{Value: "ketchup", Label: "ケチャップ", Short: "ケチャ"},
			),
		},
	},
}

// DefaultRegistry returns the compiled-in option templates.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(defaultTemplates...)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in templates: %v", err))
	}
	return reg
}

func seed(id string, category enums.ProductCategory, name, imageText, template string) Product {
	return Product{
		ID:             id,
		Category:       category,
		Name:           name,
		Price:          0,
		Image:          "https://placehold.co/400x300?text=" + imageText,
		OptionTemplate: template,
	}
}

var defaultProducts = []Product{
	seed("pancake-orange", enums.ProductCategoryPancake, "オレンジ（パンケーキ）", "Orange", "pancake-simple"),
	seed("pancake-blueberry", enums.ProductCategoryPancake, "ブルーベリー（パンケーキ）", "Blueberry", "pancake-simple"),
	seed("pancake-strawberry", enums.ProductCategoryPancake, "いちご（パンケーキ）", "Strawberry", "pancake-simple"),
	seed("crepe-strawberry", enums.ProductCategoryCrepe, "いちご（クレープ）", "Strawberry", "crepe-simple"),
	seed("crepe-orange", enums.ProductCategoryCrepe, "オレンジ（クレープ）", "Orange", "crepe-simple"),
	seed("crepe-blueberry", enums.ProductCategoryCrepe, "ブルーベリー（クレープ）", "Blueberry", "crepe-simple"),
	seed("crepe-savory", enums.ProductCategoryCrepe, "おかず（クレープ）", "Savory", "crepe-savory-simple"),
	seed("sausage-large", enums.ProductCategorySausage, "ソーセージ", "Sausage", NoOptionsTemplateID),
	seed("drink-coffee", enums.ProductCategoryDrink, "コーヒー", "Coffee", NoOptionsTemplateID),
	seed("drink-ice-tea", enums.ProductCategoryDrink, "アイスティー", "Iced+Tea", NoOptionsTemplateID),
	seed("drink-milk-tea", enums.ProductCategoryDrink, "ミルクティー", "Milk+Tea", NoOptionsTemplateID),
}

// DefaultCatalog returns the seed menu used on first boot and on reset.
func DefaultCatalog() Catalog {
	return Catalog{Products: append([]Product(nil), defaultProducts...)}
}
