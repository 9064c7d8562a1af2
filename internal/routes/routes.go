package routes

import (
	"makai_ordering/internal/handlers/order"
	"makai_ordering/internal/handlers/payement"
	"makai_ordering/internal/handlers/staff"
	"makai_ordering/internal/handlers/user"
	"makai_ordering/internal/middleware"
	"makai_ordering/internal/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, hub *realtime.Hub) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Cart-Session"},
	}))

	order.SetEventHub(hub)

	// Canal temps réel des commandes (un par restaurant)
	r.GET("/ws/orders", hub.ServeOrders)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Commandes
	api.GET("/orders", middleware.AuthRequired(), middleware.RequireStaff, order.ListOrders)
	api.GET("/orders/:id", order.GetOrderByID)
	api.GET("/orders/:id/receipt", order.GetReceiptURL)
	api.POST("/orders", middleware.OptionalAuth(), middleware.OrderSubmitRateLimit(), order.CreateOrder)
	api.PATCH("/orders/:id", middleware.AuthRequired(), middleware.RequireStaff, order.UpdateOrderStatus)

	// Codes VIP
	api.GET("/vip/validate", order.ValidateVIP)

	// Panier storefront
	api.GET("/cart", user.GetCart)
	api.POST("/cart/add", user.AddToCart)
	api.POST("/cart/remove", user.RemoveFromCart)
	api.DELETE("/cart", user.ClearCart)

	// Paiement
	api.POST("/checkout/intent", payement.CreateCheckoutIntent)

	// Authentification staff
	api.POST("/auth/staff/login", staff.Login)

	// Administration
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	admin.POST("/staff", staff.CreateStaff)
	admin.POST("/vip-codes", staff.CreateVIPCode)
}
