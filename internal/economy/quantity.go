package economy

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity is a purchase selector. QuantityMax buys as many as funds allow.
type Quantity int64

const (
	QuantityMax Quantity = 0
	Quantity1   Quantity = 1
	Quantity10  Quantity = 10
	Quantity100 Quantity = 100
	Quantity1K  Quantity = 1000
)

// Quantities lists the selectors offered to players.
var Quantities = []Quantity{Quantity1, Quantity10, Quantity100, Quantity1K, QuantityMax}

func (q Quantity) String() string {
	if q == QuantityMax {
		return "max"
	}
	return strconv.FormatInt(int64(q), 10)
}

// IsMax reports whether q is the max selector.
func (q Quantity) IsMax() bool {
	return q == QuantityMax
}

// ParseQuantity reads "1", "10", "100", "1000" or "max".
func ParseQuantity(s string) (Quantity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, q := range Quantities {
		if q.String() == s {
			return q, nil
		}
	}
	return 0, fmt.Errorf("quantity %q: want one of 1, 10, 100, 1000, max", s)
}

func (q Quantity) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quantity) UnmarshalText(b []byte) error {
	v, err := ParseQuantity(string(b))
	if err != nil {
		return err
	}
	*q = v
	return nil
}
