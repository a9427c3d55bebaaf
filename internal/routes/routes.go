package routes

import (
	"velora_back_end/internal/database"
	"velora_back_end/internal/handlers/cart"
	"velora_back_end/internal/handlers/contact"
	"velora_back_end/internal/handlers/product"
	"velora_back_end/internal/handlers/user"
	"velora_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	cartHandler := cart.NewHandler(database.Graph, database.Redis)
	productHandler := product.NewHandler(database.Graph)
	userHandler := user.NewHandler(database.Graph)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// 🔐 Authentification
	api.POST("/auth/register", middleware.RegisterRateLimit(), userHandler.Register)
	api.POST("/auth/login", middleware.LoginRateLimit(), userHandler.Login)
	api.GET("/auth/:provider", userHandler.BeginAuth)
	api.GET("/auth/:provider/callback", userHandler.CallbackAuth)
	api.GET("/auth/google/url", userHandler.GoogleAuthURL)
	api.POST("/auth/google/exchange", userHandler.GoogleTokenExchange)
	api.GET("/auth/me", middleware.AuthRequired(), userHandler.Me)

	// 👤 Utilisateur connecté
	authed := api.Group("/user")
	authed.Use(middleware.AuthRequired())
	{
		authed.PUT("", userHandler.UpdatePhoneNumber)
		authed.PUT("/password", userHandler.UpdatePassword)
	}

	// 🛒 Panier
	cartGroup := api.Group("/cart")
	cartGroup.Use(middleware.CartRateLimit())
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.POST("", cartHandler.AddToCart)
		cartGroup.PUT("", cartHandler.UpdateQuantity)
		cartGroup.DELETE("", cartHandler.RemoveFromCart)
	}
	api.GET("/cart/ws", cartHandler.CartWebSocket)

	// 🛍️ Catalogue public
	api.GET("/products", productHandler.GetAllProducts)
	api.GET("/categories", productHandler.GetAllCategories)
	api.GET("/products/search", middleware.SearchRateLimit(), productHandler.SearchProducts)
	api.GET("/products/:id", productHandler.GetProduct)
	api.GET("/products/:id/qrcode", productHandler.ProductQRCode)
	api.GET("/products/:id/images/*object", productHandler.GetProductImageURL)

	// 🔧 Administration du catalogue
	admin := api.Group("/products")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.POST("", productHandler.CreateProduct)
		admin.PUT("/:id", productHandler.UpdateProduct)
		admin.DELETE("/:id", productHandler.DeleteProduct)
		admin.POST("/:id/images", productHandler.UploadProductImage)
	}

	// 📧 Contact
	api.POST("/contact", contact.SendMessage)
}
