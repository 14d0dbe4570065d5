// internal/adapters/in/http/store/router.go
package store

import (
	"log"
	"net/http"
)

// Deps is the storefront handler set. Catalog is public; the /me surfaces
// run behind the auth middleware (wired by the DI container).
type Deps struct {
	Catalog  http.Handler
	Cart     http.Handler
	Checkout http.Handler
	Order    http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead.
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[store.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	// catalog (public)
	handleSafe(mux, "/store/items", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/items/", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/categories", deps.Catalog, "Catalog")
	handleSafe(mux, "/store/categories/", deps.Catalog, "Catalog")

	// cart (authenticated)
	handleSafe(mux, "/store/me/cart", deps.Cart, "Cart")
	handleSafe(mux, "/store/me/cart/", deps.Cart, "Cart")

	// checkout transitions (authenticated)
	handleSafe(mux, "/store/me/checkout/", deps.Checkout, "Checkout")

	// order history (authenticated)
	handleSafe(mux, "/store/me/orders", deps.Order, "Order")
	handleSafe(mux, "/store/me/orders/", deps.Order, "Order")
}
