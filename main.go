package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/config"
	"github.com/SeraphMX/grupofinancial-hub-sub000/controllers"
	"github.com/SeraphMX/grupofinancial-hub-sub000/database"
	"github.com/SeraphMX/grupofinancial-hub-sub000/middleware"
	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/SeraphMX/grupofinancial-hub-sub000/realtime"
	"github.com/SeraphMX/grupofinancial-hub-sub000/services"
	"github.com/SeraphMX/grupofinancial-hub-sub000/storage"
	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
)

// startOpsServer levanta el servidor interno de operación con salud y métricas
func startOpsServer(port int) {
	router := mux.NewRouter()
	router.Use(middleware.OpsLogging)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods("GET")

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(utils.GetMetrics().GetMetricsSnapshot())
	}).Methods("GET")

	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Printf("Servidor de operación escuchando en %s", addr)
		if err := http.ListenAndServe(addr, router); err != nil {
			log.Fatalf("Error al iniciar el servidor de operación: %v", err)
		}
	}()
}

func main() {
	// Inicializamos la configuración
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error al cargar la configuración: %v", err)
	}

	// Inicializamos la conexión a la base de datos
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Error de conexión a la base de datos: %v", err)
	}
	defer db.Close()

	// Inicializamos el almacenamiento de objetos
	store, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Error al inicializar el almacenamiento: %v", err)
	}

	// Inicializamos el canal de notificaciones
	feed, err := realtime.NewFeed(cfg)
	if err != nil {
		log.Fatalf("Error al inicializar el canal de notificaciones: %v", err)
	}
	defer feed.Close()

	// Inicializamos los servicios
	emailService := services.NewEmailService(cfg)
	documentService := services.NewDocumentService(db.DB, store, feed, emailService)
	checklistService := services.NewChecklistService(db.DB, feed)

	// Inicializamos los controladores
	authController := controllers.NewAuthController(db, cfg)
	requestController := controllers.NewRequestController(db, emailService)
	documentController := controllers.NewDocumentController(documentService, checklistService, []byte(cfg.JWT.SecretKey))
	userController := controllers.NewUserController(db)
	dashboardController := controllers.NewDashboardController(db.DB)

	// Creamos el router
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimit())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "https://hub.grupofinancial.mx"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Rutas públicas
	router.POST("/api/auth/signUp", authController.SignUp)
	router.POST("/api/auth/signIn", authController.SignIn)
	router.POST("/api/cotizador", requestController.Quote)

	// El canal de eventos se autoriza con boleto firmado, no con encabezado
	router.GET("/api/solicitudes/:id/documentos/eventos", documentController.Events)

	// Rutas protegidas
	protected := router.Group("/api")
	protected.Use(middleware.AuthRequired([]byte(authController.GetJWTKey())))

	// Solicitudes de crédito
	protected.POST("/solicitudes", requestController.Create)
	protected.GET("/solicitudes", requestController.List)
	protected.GET("/solicitudes/:id", requestController.Get)
	protected.POST("/solicitudes/:id/cancelar", requestController.Cancel)

	// Documentos de una solicitud
	protected.GET("/solicitudes/:id/documentos", documentController.GetChecklist)
	protected.POST("/solicitudes/:id/documentos/eventos/boleto", documentController.EventsTicket)
	protected.POST("/solicitudes/:id/documentos", documentController.Upload)
	protected.POST("/solicitudes/:id/espacios/:slot/enviar", documentController.SendToReview)
	protected.POST("/solicitudes/:id/espacios/:slot/excluir", documentController.Exclude)
	protected.DELETE("/solicitudes/:id/espacios/:slot/excluir", documentController.Include)
	protected.GET("/documentos/:docId/descarga", documentController.DownloadURL)
	protected.DELETE("/documentos/:docId", documentController.Delete)

	// Rutas de revisión, solo asesores y administradores
	review := protected.Group("")
	review.Use(middleware.RoleRequired(models.RoleAsesor, models.RoleAdmin))
	review.PATCH("/solicitudes/:id/estado", requestController.UpdateStatus)
	review.POST("/documentos/:docId/revision", documentController.Review)
	review.GET("/dashboard/resumen", dashboardController.Summary)
	review.GET("/dashboard/pendientes", dashboardController.PendingReviews)

	// Administración de usuarios, solo administradores
	admin := protected.Group("/usuarios")
	admin.Use(middleware.RoleRequired(models.RoleAdmin))
	admin.GET("", userController.List)
	admin.POST("", userController.Create)
	admin.PUT("/:id", userController.Update)
	admin.POST("/:id/resetPassword", userController.ResetPassword)

	// Servidor interno de operación
	startOpsServer(cfg.Server.OpsPort)

	// Iniciamos el servidor
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Servidor escuchando en %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}
