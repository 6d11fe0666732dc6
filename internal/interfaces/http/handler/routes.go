package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes registers product and ledger routes
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("/low-stock", h.ListLowStock)
		products.GET("/sku/:sku", h.GetProductBySKU)
		products.GET("/:id", h.GetProduct)
		products.POST("/:id/movements", h.RecordMovement)
		products.GET("/:id/movements", h.ListMovements)
	}
}

// RegisterRoutes registers order lifecycle routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("/number/:number", h.GetByNumber)
		orders.GET("/customer/:id", h.ListByCustomer)
		orders.GET("/status/:status", h.ListByStatus)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/status", h.SetStatus)
	}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/mobile", h.InitiateMobile)
		payments.POST("/cash", h.RecordCash)
		payments.POST("/sweep", h.SweepStale)
		payments.GET("/order/:id", h.ListByOrder)
		payments.GET("/:id", h.Get)
		payments.POST("/:id/poll", h.Poll)
	}
}

// RegisterRoutes registers the gateway callback route. It lives under the
// same API group but carries no authentication.
func (h *PaymentCallbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/callback", h.HandleCallback)
}
