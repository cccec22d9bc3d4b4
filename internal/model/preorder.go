package model

import "time"

// ConcessionItem is a snack-bar product with a unit price and a stock
// counter.  The engine only reads the price and reserves/releases
// stock; item catalog maintenance is external.
type ConcessionItem struct {
    ID             uint64    // concession_items.id
    CinemaID       uint64    // concession_items.cinema_id
    Name           string    // concession_items.name
    UnitPriceCents int64     // concession_items.unit_price_cents
    StockQty       int64     // concession_items.stock_qty
    IsActive       bool      // concession_items.is_active
    CreatedAt      time.Time // concession_items.created_at
    UpdatedAt      time.Time // concession_items.updated_at
}

// ConcessionPreorder is a quantity of one concession item purchased
// under an order.  All pre-orders of an order share one pickup code.
// Cancelling a pre-order returns its quantity to the item's stock;
// StockRestored guards that compensation so it runs at most once per
// row no matter how often the cancellation sweep re-visits it.
type ConcessionPreorder struct {
    ID             uint64         // concession_preorders.id
    OrderID        uint64         // concession_preorders.order_id
    ItemID         uint64         // concession_preorders.item_id
    Quantity       int64          // concession_preorders.quantity
    UnitPriceCents int64          // concession_preorders.unit_price_cents
    TotalCents     int64          // concession_preorders.total_cents
    PickupCode     string         // concession_preorders.pickup_code
    Status         PreorderStatus // concession_preorders.status
    StockRestored  bool           // concession_preorders.stock_restored
    CreatedAt      time.Time      // concession_preorders.created_at
    UpdatedAt      time.Time      // concession_preorders.updated_at
}
