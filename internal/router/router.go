package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/internal/app/controller"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type Router struct {
	categoryController    *controller.CategoryController
	filterController      *controller.FilterController
	productController     *controller.ProductController
	productViewController *controller.ProductViewController
	config                *config.Config
}

func NewRouter(
	categoryController *controller.CategoryController,
	filterController *controller.FilterController,
	productController *controller.ProductController,
	productViewController *controller.ProductViewController,
	cfg *config.Config,
) *Router {
	return &Router{
		categoryController:    categoryController,
		filterController:      filterController,
		productController:     productController,
		productViewController: productViewController,
		config:                cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Catalog API is running",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/main-category", r.categoryController.CreateMainCategory)
		api.POST("/sub-category", r.categoryController.CreateSubCategory)
		api.POST("/sub-sub-category", r.categoryController.CreateSubSubCategory)

		api.GET("/main-categories", r.categoryController.ListMainCategories)
		api.GET("/sub-categories", r.categoryController.ListSubCategories)
		api.GET("/sub-sub-categories", r.categoryController.ListSubSubCategories)

		api.PUT("/main-category/:id", r.categoryController.UpdateMainCategory)
		api.PUT("/sub-category/:id", r.categoryController.UpdateSubCategory)
		api.PUT("/sub-sub-category/:id", r.categoryController.UpdateSubSubCategory)

		api.DELETE("/main-category/:id", r.categoryController.DeleteMainCategory)
		api.DELETE("/sub-category/:id", r.categoryController.DeleteSubCategory)
		api.DELETE("/sub-sub-category/:id", r.categoryController.DeleteSubSubCategory)
	}
	{
		api.POST("/:subSubCategoryId/filters", r.filterController.CreateFilter)
		api.GET("/:subSubCategoryId/filters", r.filterController.GetFilters)

		api.POST("/filter-values", r.filterController.CreateFilterValue)
		api.PUT("/filter-values/:filterValueId", r.filterController.UpdateFilterValue)
		api.DELETE("/filter-values/:filterValueId", r.filterController.DeleteFilterValue)

		api.GET("/filter-options/:filterOptionId/values", r.filterController.GetFilterValues)
		api.PUT("/filter-options/:filterOptionId", r.filterController.UpdateFilterOption)
		api.DELETE("/filter-options/:filterOptionId", r.filterController.DeleteFilterOption)

		api.POST("/product-filters", r.filterController.CreateProductFilter)
	}
	{
		api.GET("/products", middleware.ValidateProductQuery(), r.productController.ListProducts)
		api.POST("/products", r.productController.CreateProduct)
		api.GET("/products/:id", r.productController.GetProductByID)
		api.PUT("/products/:id", r.productController.UpdateProduct)
		api.DELETE("/products/:id", r.productController.DeleteProduct)

		api.GET("/product/view/:id", r.productViewController.ViewProduct)
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowOriginFunc = func(string) bool { return true }
			return cfg
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}
