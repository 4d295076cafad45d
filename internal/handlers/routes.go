package handlers

import (
	"restopos/internal/middleware"

	"github.com/labstack/echo/v4"
)

// Router groups the handlers served under the versioned API
type Router struct {
	Tables      *TableHandlers
	TableOrders *TableOrderHandlers
	Orders      *OrderHandlers
	Products    *ProductHandlers
	Categories  *CategoryHandlers
	Customers   *CustomerHandlers
	Dashboard   *DashboardHandlers
	Jobs        *JobHandlers
}

// Register mounts the protected routes on g. g must already authenticate
// requests; role gates are applied per route.
func (r *Router) Register(g *echo.Group) {
	staff := middleware.Staff()
	management := middleware.Management()
	admin := middleware.RequireRole(middleware.RoleAdmin)

	tables := g.Group("/tables")
	tables.GET("", r.Tables.ListTables)
	tables.POST("", r.Tables.CreateTable, management)
	tables.GET("/filter", r.Tables.FilterTables)
	tables.GET("/floor-plan", r.Tables.FloorPlan)
	tables.GET("/number/:number", r.Tables.GetTableByNumber)
	tables.GET("/:id", r.Tables.GetTable)
	tables.PUT("/:id", r.Tables.UpdateTable, management)
	tables.DELETE("/:id", r.Tables.DeleteTable, management)
	tables.POST("/:id/clear", r.Tables.ClearTable, staff)
	tables.POST("/:id/mark-available", r.Tables.MarkAvailable, staff)
	tables.PATCH("/:id/status", r.Tables.ChangeStatus, staff)
	tables.PATCH("/:id/position", r.Tables.UpdatePosition, management)

	tableOrders := g.Group("/table-orders")
	tableOrders.GET("/table/:tableId", r.TableOrders.ListTableOrders)
	tableOrders.POST("/table/:tableId", r.TableOrders.CreateTableOrder, staff)
	tableOrders.GET("/table/:tableId/current", r.TableOrders.GetCurrentOrder)
	tableOrders.GET("/table/:tableId/cart", r.TableOrders.GetActiveCart)
	tableOrders.POST("/table/:tableId/cart/open", r.TableOrders.OpenCart, staff)
	tableOrders.POST("/table/:tableId/cart", r.TableOrders.AddToCart, staff)
	tableOrders.DELETE("/table/:tableId/cart", r.TableOrders.RemoveFromCart, staff)
	tableOrders.POST("/:orderId/complete-and-clear", r.TableOrders.CompleteAndClear, staff)

	orders := g.Group("/orders")
	orders.GET("", r.Orders.ListOrders)
	orders.POST("", r.Orders.CreateOrder, staff)
	orders.GET("/number/:number", r.Orders.GetOrderByNumber)
	orders.GET("/status/:status", r.Orders.ListOrdersByStatus)
	orders.GET("/type/:type", r.Orders.ListOrdersByType)
	orders.GET("/customer/:customerId", r.Orders.ListOrdersByCustomer)
	orders.GET("/:id", r.Orders.GetOrder)
	orders.GET("/:id/receipt", r.Orders.GetReceiptURL)
	orders.PATCH("/:id/status", r.Orders.UpdateOrderStatus, staff)
	orders.DELETE("/:id", r.Orders.DeleteOrder, management)
	orders.POST("/:id/items", r.Orders.AddOrderItem, staff)
	orders.DELETE("/:id/items/:itemId", r.Orders.RemoveOrderItem, staff)

	products := g.Group("/products")
	products.GET("", r.Products.ListProducts)
	products.POST("", r.Products.CreateProduct, management)
	products.GET("/:id", r.Products.GetProduct)
	products.PUT("/:id", r.Products.UpdateProduct, management)
	products.DELETE("/:id", r.Products.DeleteProduct, management)

	categories := g.Group("/categories")
	categories.GET("", r.Categories.ListCategories)
	categories.POST("", r.Categories.CreateCategory, management)
	categories.GET("/:id", r.Categories.GetCategory)

	customers := g.Group("/customers")
	customers.GET("", r.Customers.ListCustomers)
	customers.POST("", r.Customers.CreateCustomer, staff)
	customers.GET("/:id", r.Customers.GetCustomer)

	dashboard := g.Group("/dashboard")
	dashboard.GET("/stats", r.Dashboard.GetStats)
	dashboard.GET("/recent-orders", r.Dashboard.RecentOrders)

	jobs := g.Group("/jobs", admin)
	jobs.GET("", r.Jobs.ListJobs)
	jobs.POST("/:name/run", r.Jobs.RunJob)
}
