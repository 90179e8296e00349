package checkout

import "errors"

// Expected, user-facing placement outcomes. Anything else coming out of
// PlaceOrder is a transient store failure and safe to retry unchanged.
var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoAddress       = errors.New("no address selected")
	ErrMixedCurrencies = errors.New("cart items have mixed currencies")
	ErrProductDeleted  = errors.New("product was removed from store")
	ErrProductSold     = errors.New("product already sold")
)
