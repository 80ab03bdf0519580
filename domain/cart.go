package domain

type CartVariant struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Value string   `json:"value"`
	Price *float64 `json:"price,omitempty"`
}

// CartLine lives in the shopper's session. Quantity and Variant never
// influence scoring.
type CartLine struct {
	Product  Product      `json:"product"`
	Quantity int          `json:"quantity"`
	Variant  *CartVariant `json:"variant,omitempty"`
}
