package product

// CategoryCode is a two-character numeric classification code in the
// canonical output, e.g. "00" for fruit. The empty string means
// uncategorized and is omitted from serialized records.
type CategoryCode string

const (
	CategoryFruit             CategoryCode = "00"
	CategoryVegetables        CategoryCode = "01"
	CategorySaladAndHerbs     CategoryCode = "02"
	CategoryNutsAndDriedFruit CategoryCode = "03"
)

// categoryNames maps retailer subcategory description strings to codes.
// Unmapped names are not an error, the product is simply uncategorized.
var categoryNames = map[string]CategoryCode{
	"Fruit":               CategoryFruit,
	"Vegetables":          CategoryVegetables,
	"Salad & Herbs":       CategorySaladAndHerbs,
	"Herbs":               CategorySaladAndHerbs,
	"Nuts & Dried Fruit":  CategoryNutsAndDriedFruit,
	"Nuts & Dried Fruits": CategoryNutsAndDriedFruit,
}

// CategoryFromNames resolves the first matching subcategory name to a code.
// It returns the empty code when nothing matches.
func CategoryFromNames(names []string) CategoryCode {
	for _, name := range names {
		if code, ok := categoryNames[name]; ok {
			return code
		}
	}
	return ""
}
