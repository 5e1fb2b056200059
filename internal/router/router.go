package router

import (
	"time"

	"github.com/xzero11x/app-hotel-sub001/internal/config"
	"github.com/xzero11x/app-hotel-sub001/internal/handler"
	"github.com/xzero11x/app-hotel-sub001/internal/infra"
	"github.com/xzero11x/app-hotel-sub001/internal/middleware"
	"github.com/xzero11x/app-hotel-sub001/internal/repository"
	"github.com/xzero11x/app-hotel-sub001/internal/service"
	"github.com/xzero11x/app-hotel-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// facturación service (the sync cron drives it outside the HTTP loop).
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, nubefactCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) (*gin.Engine, service.FacturacionService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	nubefactClient := infra.NewNubeFactClient(cfg.NubeFactURL, cfg.NubeFactToken)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	cajaRepo := repository.NewCajaRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	reservaRepo := repository.NewReservaRepository(db)
	habitacionRepo := repository.NewHabitacionRepository(db)
	huespedRepo := repository.NewHuespedRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	facturacionSvc := service.NewFacturacionService(comprobanteRepo, nubefactClient, nubefactCB, cfg)
	pagoSvc := service.NewPagoService(pagoRepo, facturacionSvc)
	cajaSvc := service.NewCajaService(cajaRepo, pagoRepo, rdb, dispatcher, cfg.Tolerancia())
	reservaSvc := service.NewReservaService(reservaRepo, habitacionRepo, huespedRepo, pagoSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	cajaH := handler.NewCajaHandler(cajaSvc)
	pagosH := handler.NewPagoHandler(pagoSvc)
	reservasH := handler.NewReservaHandler(reservaSvc)
	facturacionH := handler.NewFacturacionHandler(facturacionSvc, cfg)
	habitacionesH := handler.NewHabitacionHandler(habitacionRepo, cajaRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, nubefactCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Provider-facing endpoints: authenticated by shared secrets, not JWTs.
	fact := r.Group("/v1/facturacion")
	{
		fact.POST("/webhook", middleware.RateLimiter(60, time.Minute), facturacionH.Webhook)
		fact.POST("/sincronizar", facturacionH.Sincronizar)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: recepcionista, supervisor, administrador — declared per-endpoint
		operadores := middleware.RequireRole("recepcionista", "supervisor", "administrador")
		supervision := middleware.RequireRole("supervisor", "administrador")

		caja := v1.Group("/caja")
		{
			caja.GET("/cajas", operadores, habitacionesH.ListarCajas)
			caja.POST("/turnos", operadores, cajaH.AbrirTurno)
			caja.POST("/turnos/cerrar", operadores, cajaH.CerrarTurno)
			caja.POST("/turnos/cerrar-forzado", supervision, cajaH.CerrarTurnoForzado)
			caja.POST("/movimientos", operadores, cajaH.RegistrarMovimiento)
			caja.GET("/turnos/activo", operadores, cajaH.TurnoActivo)
			caja.GET("/turnos/:id/reporte", operadores, cajaH.ObtenerReporte)
			caja.GET("/turnos/:id/pagos", operadores, pagosH.ListarPorTurno)
			caja.GET("/turnos", supervision, cajaH.Historial)
		}

		pagos := v1.Group("/pagos", operadores)
		{
			pagos.POST("", pagosH.Registrar)
			pagos.GET("/:id", pagosH.Obtener)
			pagos.GET("/:id/comprobante", facturacionH.ObtenerPorPago)
		}

		reservas := v1.Group("/reservas", operadores)
		{
			reservas.POST("", reservasH.Crear)
			reservas.GET("", reservasH.ListarActivas)
			reservas.GET("/:id", reservasH.Obtener)
			reservas.POST("/:id/checkin", reservasH.Checkin)
			reservas.POST("/:id/checkout", reservasH.Checkout)
			reservas.POST("/:id/cancelar", reservasH.Cancelar)
			reservas.POST("/:id/late-checkout", reservasH.LateCheckout)
		}

		huespedes := v1.Group("/huespedes", operadores)
		{
			huespedes.POST("", reservasH.CrearHuesped)
			huespedes.GET("", reservasH.BuscarHuesped)
		}

		habitaciones := v1.Group("/habitaciones", operadores)
		{
			habitaciones.GET("", habitacionesH.Listar)
			habitaciones.PATCH("/:id/estado", habitacionesH.CambiarEstado)
		}

		// Comprobante cancellation needs supervision.
		v1.POST("/facturacion/comprobantes/:id/anular", supervision, facturacionH.Anular)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, facturacionSvc
}
