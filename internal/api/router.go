package api

import (
	"github.com/gin-gonic/gin"

	"github.com/RobelK1738/Buddys-Brain/internal/api/handler"
	"github.com/RobelK1738/Buddys-Brain/internal/api/middleware"
	"github.com/RobelK1738/Buddys-Brain/internal/config"
	"github.com/RobelK1738/Buddys-Brain/internal/repository"
	"github.com/RobelK1738/Buddys-Brain/internal/service"
	"github.com/RobelK1738/Buddys-Brain/internal/storage"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	ingestService *service.IngestService,
	searchService *service.SearchService,
	resources *repository.ResourceRepository,
	store storage.ObjectStorage,
	cfg *config.ServerConfig,
) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler()
	resourceHandler := handler.NewResourceHandler(ingestService, resources, store)
	searchHandler := handler.NewSearchHandler(searchService)
	uploadHandler := handler.NewUploadHandler(ingestService, store)

	r.GET("/health", healthHandler.Health)

	r.POST("/resources", resourceHandler.CreateResource)
	r.POST("/resources/bulk", resourceHandler.CreateResourcesBulk)
	r.GET("/resources", resourceHandler.ListResources)
	r.GET("/numResources", resourceHandler.CountResources)
	r.GET("/resources/:id", resourceHandler.GetResource)
	r.DELETE("/resources/:id", resourceHandler.DeleteResource)

	r.POST("/upload", uploadHandler.Upload)
	r.POST("/search", searchHandler.Search)

	return r
}
