// Package inventoryrpc implements the inventory RPC client of spec §4.C:
// reserve/release/commit/query against the remote inventory service, with
// the 10s request / 5s connect timeouts and 30s TCP keepalive the original
// Rust client sets (original_source/logistics-engine/src/grpc/inventory/
// client.rs). No generated protobuf package exists anywhere in the
// retrieval pack (see DESIGN.md "dropped dependencies"), so the wire types
// here are plain Go structs carried over a JSON codec registered with
// google.golang.org/grpc/encoding, rather than fabricated .pb.go stubs.
package inventoryrpc

// ProductItem is one requested line in a reservation/query call (spec §6
// "repeated product_items{product_id, sku, quantity}").
type ProductItem struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int32  `json:"quantity"`
}

// Shortage describes one item the remote service could not fully satisfy.
type Shortage struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Requested int32  `json:"requested"`
	Available int32  `json:"available"`
}

// CheckAndReserveStockRequest is the pre-reserve call's request (spec §4.C
// "check_and_reserve_stock(order_id, items, warehouse_id)").
type CheckAndReserveStockRequest struct {
	OrderID     string        `json:"order_id"`
	Items       []ProductItem `json:"items"`
	WarehouseID string        `json:"warehouse_id"`
}

// CheckAndReserveStockResponse carries the business-level outcome, distinct
// from a transport failure (spec §4.C "Failure policy").
type CheckAndReserveStockResponse struct {
	Success       bool       `json:"success"`
	ReservationID string     `json:"reservation_id"`
	Message       string     `json:"message"`
	Shortages     []Shortage `json:"shortages,omitempty"`
}

// ReleaseStockRequest releases a held reservation (spec §4.C
// "release_reserved_stock(reservation_id, order_id, reason)").
type ReleaseStockRequest struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
	Reason        string `json:"reason"`
}

type ReleaseStockResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CommitReservationRequest finalizes a reservation after the local
// transaction commits (spec §9 "Open question — reservation → commit").
type CommitReservationRequest struct {
	ReservationID string `json:"reservation_id"`
	OrderID       string `json:"order_id"`
}

type CommitReservationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InventoryLevelsRequest queries remote stock levels (spec §4.C
// "get_inventory_levels(product_ids, skus, warehouse_id)").
type InventoryLevelsRequest struct {
	ProductIDs  []string `json:"product_ids"`
	SKUs        []string `json:"skus"`
	WarehouseID string   `json:"warehouse_id"`
}

type InventoryLevel struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Quantity  int32  `json:"quantity"`
}

type InventoryLevelsResponse struct {
	Levels []InventoryLevel `json:"levels"`
}
