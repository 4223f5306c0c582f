package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/weiwangfds/fontbase/config"
	"github.com/weiwangfds/fontbase/internal/handler"
	"github.com/weiwangfds/fontbase/internal/middleware"
	categoryservice "github.com/weiwangfds/fontbase/internal/service/category"
	collectionservice "github.com/weiwangfds/fontbase/internal/service/collection"
	favoriteservice "github.com/weiwangfds/fontbase/internal/service/favorite"
	fontservice "github.com/weiwangfds/fontbase/internal/service/font"
	"github.com/weiwangfds/fontbase/internal/service/scanner"
	"github.com/weiwangfds/fontbase/internal/service/watcher"
	"gorm.io/gorm"
)

// Router 路由配置
type Router struct {
	engine *gin.Engine
	db     *gorm.DB
}

// NewRouter 创建路由实例
func NewRouter(loggerMiddleware *middleware.LoggerMiddleware, db *gorm.DB, cfg *config.Config,
	scannerService scanner.ScannerService, fontWatcher watcher.FontWatcherService) *Router {
	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	// 初始化服务
	categoryService := categoryservice.NewCategoryService(db)
	favoriteService := favoriteservice.NewFavoriteService(db)
	collectionService := collectionservice.NewCollectionService(db)
	fontService := fontservice.NewFontService(db, favoriteService, collectionService)

	// 初始化处理器
	categoryHandler := handler.NewCategoryHandler(categoryService, scannerService, fontWatcher)
	fontHandler := handler.NewFontHandler(fontService, scannerService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	collectionHandler := handler.NewCollectionHandler(collectionService)

	// 使用中间件
	engine.Use(gin.Recovery())
	engine.Use(loggerMiddleware.RequestID())
	engine.Use(loggerMiddleware.RequestLogger())

	// 配置CORS
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// 健康检查
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Service is running",
		})
	})

	// 字体文件静态服务，URL键定位文件，文件名仅用于可读的下载名
	engine.GET("/fonts-static/:urlKey/:filename", fontHandler.ServeFont)

	// API路由组
	api := engine.Group("/api/v1")
	{
		// 基础信息接口
		api.GET("/info", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"service": "Fontbase",
				"version": "1.0.0",
				"status":  "running",
			})
		})

		// 数据库状态检查
		api.GET("/db/status", func(c *gin.Context) {
			sqlDB, err := db.DB()
			if err != nil {
				c.JSON(500, gin.H{
					"error": "Database connection error",
				})
				return
			}

			if err := sqlDB.Ping(); err != nil {
				c.JSON(500, gin.H{
					"error": "Database ping failed",
				})
				return
			}

			c.JSON(200, gin.H{
				"status": "Database connection OK",
			})
		})

		// 分类管理接口
		categories := api.Group("/categories")
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
			categories.POST("/:id/rescan", categoryHandler.RescanCategory)
		}

		// 字体查询接口
		fonts := api.Group("/fonts")
		{
			fonts.GET("", fontHandler.SearchFonts)
			fonts.GET("/families/:family", fontHandler.GetFontFamily)
			fonts.GET("/scan", fontHandler.GetScanStatus)
			fonts.POST("/scan", fontHandler.TriggerScan)
		}

		// 收藏管理接口
		favorites := api.Group("/favorites")
		{
			favorites.GET("", favoriteHandler.ListFavorites)
			favorites.POST("/toggle", favoriteHandler.ToggleFavorite)
		}

		// 集合管理接口
		collections := api.Group("/collections")
		{
			collections.GET("", collectionHandler.ListCollections)
			collections.POST("", collectionHandler.CreateCollection)
			collections.GET("/:id", collectionHandler.GetCollection)
			collections.PUT("/:id", collectionHandler.UpdateCollection)
			collections.DELETE("/:id", collectionHandler.DeleteCollection)
			collections.GET("/:id/items", collectionHandler.GetCollectionItems)
			collections.POST("/:id/items", collectionHandler.AddCollectionItem)
			collections.DELETE("/:id/items", collectionHandler.RemoveCollectionItem)
		}
	}

	return &Router{
		engine: engine,
		db:     db,
	}
}

// GetEngine 获取Gin引擎实例
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
