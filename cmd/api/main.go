package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	_ "github.com/jhoicas/erp-inventario/docs"
	"github.com/jhoicas/erp-inventario/internal/application/documents"
	"github.com/jhoicas/erp-inventario/internal/application/inventory"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/messaging"
	"github.com/jhoicas/erp-inventario/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/erp-inventario/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/erp-inventario/internal/interfaces/http"
	"github.com/jhoicas/erp-inventario/pkg/config"
	"github.com/jhoicas/erp-inventario/pkg/logger"
)

// @title                       ERP Inventario API
// @version                     1.0
// @description                 Libro de inventario con políticas de seguimiento y ciclo de vida de ventas y recepciones de compra.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar persistencia")
	}
	defer be.close()

	ledgerOpts := []inventory.Option{inventory.WithLogger(log.Component("ledger"))}
	var recorder *metrics.Recorder
	var transitions documents.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder(cfg.Metrics.Namespace)
		ledgerOpts = append(ledgerOpts, inventory.WithRecorder(recorder))
		transitions = recorder
	}
	ledger := inventory.NewLedgerUseCase(be.tx, be.stock, ledgerOpts...)

	// Eventos de documentos: solo si hay brokers configurados.
	var publisher documents.EventPublisher
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor kafka")
			}
		}()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicación de eventos activa")
	}

	deps := documents.Deps{
		TxRunner:      be.tx,
		Ledger:        ledger,
		DocumentRepo:  be.documents,
		ProductRepo:   be.products,
		WarehouseRepo: be.warehouses,
		Publisher:     publisher,
		Recorder:      transitions,
		PDF:           infrapdf.NewMarotoPDFGenerator(),
		Logger:        log.Component("documents"),
	}
	salesUC := documents.NewSalesUseCase(deps)
	receiptsUC := documents.NewPurchaseReceiptsUseCase(deps)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "ERP Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	if recorder != nil {
		app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:           ledger,
		Sales:            salesUC,
		PurchaseReceipts: receiptsUC,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
