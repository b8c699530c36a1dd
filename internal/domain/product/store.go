package product

import "github.com/go-faster/errors"

// Store identifies a grocery retailer with its own catalog API and raw
// JSON shape. The string value is used in file paths, cache keys, and the
// canonical output, so it must stay stable.
type Store string

const (
	StoreColes   Store = "coles"
	StoreWoolies Store = "woolies"
)

// Stores returns every supported retailer in a fixed order.
func Stores() []Store {
	return []Store{StoreColes, StoreWoolies}
}

// ParseStore converts CLI/user input into a Store.
func ParseStore(s string) (Store, error) {
	switch Store(s) {
	case StoreColes:
		return StoreColes, nil
	case StoreWoolies:
		return StoreWoolies, nil
	default:
		return "", errors.Errorf("unknown store %q (expected one of: coles, woolies)", s)
	}
}

func (s Store) String() string {
	return string(s)
}
