package router

import (
	"smartshop/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc, selfOrAdmin echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/logout", handler.Logout, authRequired)

	users.PUT("/:id", handler.UpdateUser, authRequired, selfOrAdmin)
	users.GET("", handler.GetAllUsers, authRequired, adminOnly)
	users.GET("/:id", handler.GetUserByID, authRequired, selfOrAdmin)
	users.DELETE("/:id", handler.DeleteUser, authRequired, adminOnly)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("", handler.GetAllProducts)
	products.GET("/meta/categories", handler.GetCategories)
	products.GET("/:id", handler.GetProductByID)
	products.POST("/:id/interact", handler.RecordInteraction, authRequired)
	products.POST("", handler.CreateProduct, authRequired, adminOnly)
	products.PUT("/:id", handler.UpdateProduct, authRequired, adminOnly)
	products.DELETE("/:id", handler.DeleteProduct, authRequired, adminOnly)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	carts := api.Group("/cart", authRequired)

	carts.GET("", handler.GetCart)
	carts.POST("/items", handler.AddItem)
	carts.PUT("/items/:productId", handler.UpdateItem)
	carts.DELETE("/items/:productId", handler.RemoveItem)
	carts.DELETE("", handler.ClearCart)
	carts.POST("/checkout", handler.Checkout)
}

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc) {
	reco := api.Group("/recommendations")

	reco.GET("/popular", handler.Popular)
	reco.GET("", handler.Recommend, authRequired)
	reco.GET("/history", handler.History, authRequired)
	reco.GET("/debug", handler.Debug, authRequired)
}
