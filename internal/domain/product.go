package domain

// ProductStatus is the catalog availability flag.
type ProductStatus string

const (
	ProductAvailable  ProductStatus = "available"
	ProductComingSoon ProductStatus = "coming_soon"
	ProductSoldOut    ProductStatus = "sold_out"
)

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Image       string `json:"image"`
	// PurchaseLimit caps the quantity per checkout; 0 means uncapped.
	PurchaseLimit int           `json:"purchaseLimit"`
	Status        ProductStatus `json:"status"`
}
