package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats summarises a restaurant. Each figure is computed
// independently and reads as zero when its query failed.
type DashboardStats struct {
	TotalOrders    int             `json:"total_orders"`
	TotalCustomers int             `json:"total_customers"`
	TotalProducts  int             `json:"total_products"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	GeneratedAt    time.Time       `json:"generated_at"`
}
