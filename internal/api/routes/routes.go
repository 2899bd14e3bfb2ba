// server/internal/api/routes/routes.go
package routes

import (
	"net/http"

	"equipment-dispatch-api-server/internal/api/handlers"
	"equipment-dispatch-api-server/internal/api/middleware"
	"equipment-dispatch-api-server/internal/cache"
	"equipment-dispatch-api-server/internal/dispatch"
	"equipment-dispatch-api-server/internal/health"
	"equipment-dispatch-api-server/internal/registry"
	"equipment-dispatch-api-server/internal/sensors"
	"equipment-dispatch-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// newEngine builds the common base both services share: request logging, JSON
// recovery, permissive CORS, 200 for any OPTIONS, and JSON 404/405 bodies.
func newEngine(logger *zap.Logger, endpoints gin.H) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:              []string{"Content-Type"},
		OptionsResponseStatusCode: http.StatusOK,
	}))
	router.Use(middleware.Preflight())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":               "Endpoint not found",
			"available_endpoints": endpoints,
		})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	return router
}

// SetupRouter wires the logistics API.
func SetupRouter(
	registryStore *registry.Store,
	equipmentCache *cache.Cache,
	dispatchService *dispatch.Service,
	reporter *health.Reporter,
	wsHub *socket.Hub,
	logger *zap.Logger,
) *gin.Engine {
	router := newEngine(logger, gin.H{
		"GET /equipments": "List equipment",
		"POST /dispatch":  "Urgent dispatch",
		"GET /health":     "API status",
		"GET /metrics":    "Prometheus metrics",
		"GET /ws":         "Live dispatch feed (WebSocket)",
	})

	equipmentHandler := &handlers.EquipmentHandler{Registry: registryStore, Cache: equipmentCache}
	dispatchHandler := &handlers.DispatchHandler{Service: dispatchService}
	healthHandler := &handlers.HealthHandler{Reporter: reporter}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, Logger: logger.Named("ws")}

	router.GET("/equipments", equipmentHandler.GetEquipments)
	router.POST("/dispatch", dispatchHandler.CreateDispatch)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", webSocketHandler.ServeWs)

	return router
}

// SetupSensorsRouter wires the sensors API.
func SetupSensorsRouter(
	readings *sensors.Readings,
	forwarder *sensors.Forwarder,
	reporter *health.Reporter,
	logger *zap.Logger,
) *gin.Engine {
	router := newEngine(logger, gin.H{
		"GET /sensor-data": "Sensor data",
		"POST /alert":      "Send alert",
		"GET /health":      "API status",
		"GET /metrics":     "Prometheus metrics",
	})

	sensorHandler := &handlers.SensorHandler{Readings: readings, Forwarder: forwarder}
	healthHandler := &handlers.HealthHandler{Reporter: reporter}

	router.GET("/sensor-data", sensorHandler.GetSensorData)
	router.POST("/alert", sensorHandler.SendAlert)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
