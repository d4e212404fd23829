package domain

// InventoryRecord is the authoritative stock count for one product.
// StockCount never goes negative; a decrement that would cross zero fails
// atomically instead of flooring.
type InventoryRecord struct {
	ProductID  string `json:"productId"`
	StockCount int    `json:"stockCount"`
}
