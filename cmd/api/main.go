package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/swaggo/swag"

	"github.com/jhoicas/zatca-einvoice/docs"
	"github.com/jhoicas/zatca-einvoice/internal/application/billing"
	"github.com/jhoicas/zatca-einvoice/internal/domain/repository"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/zatca-einvoice/internal/infrastructure/pdf"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/postgres"
	"github.com/jhoicas/zatca-einvoice/internal/infrastructure/zatca/signer"
	httpRouter "github.com/jhoicas/zatca-einvoice/internal/interfaces/http"
	"github.com/jhoicas/zatca-einvoice/pkg/config"
	"github.com/jhoicas/zatca-einvoice/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("profile", cfg.ZATCA.Profile).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		txRunner    billing.ChainTxRunner
		chainRepo   repository.ChainRepository
		invoiceRepo repository.InvoiceRepository
	)
	switch cfg.DB.Driver {
	case config.DBDriverMemory:
		store := memory.NewStore()
		txRunner, chainRepo, invoiceRepo = store, store.Chains(), store.Invoices()
		log.Warn().Msg("persistencia en memoria: la cadena se pierde al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración del esquema")
		}
		txRunner = postgres.NewTxRunner(pool)
		chainRepo = postgres.NewChainRepository(pool)
		invoiceRepo = postgres.NewInvoiceRepository(pool)
	}

	// Par de llaves del EGS: generado (certificado autofirmado) o leído de archivo
	keys, err := signer.LoadKeyPair(signer.LoadOptions{
		Source:         cfg.ZATCA.KeySource,
		PrivateKeyPath: cfg.ZATCA.PrivateKeyPath,
		CertPath:       cfg.ZATCA.CertPath,
		CertPassword:   cfg.ZATCA.CertPassword,
		CommonName:     cfg.ZATCA.EGSName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("par de llaves ZATCA")
	}
	signerSvc, err := signer.NewService(keys)
	if err != nil {
		log.Fatal().Err(err).Msg("firmador ZATCA")
	}

	pipelineCfg, err := billing.NewPipelineConfig(cfg.ZATCA)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración del pipeline")
	}
	pipeline, err := billing.NewPipeline(pipelineCfg, signerSvc, billing.WithLogger(log.Component("pipeline")))
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline ZATCA")
	}

	issueUC := billing.NewIssueInvoiceUseCase(txRunner, pipeline)
	queryUC := billing.NewInvoiceQueryUseCase(invoiceRepo)
	chainUC := billing.NewChainUseCase(chainRepo, invoiceRepo)
	verifyUC := billing.NewVerifyUseCase()

	// PDF: representación impresa con el QR de la factura
	pdfGenerator := infrapdf.NewMarotoPDFGenerator()
	invoicePDFUC := billing.NewPDFUseCase(invoiceRepo, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    docs.SwaggerInfo.Title,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "profile": cfg.ZATCA.Profile})
	})

	// Documento OpenAPI embebido (no depende del archivo en disco)
	app.Get("/openapi.json", func(c *fiber.Ctx) error {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(doc)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		IssueInvoice: issueUC,
		InvoiceQuery: queryUC,
		InvoicePDF:   invoicePDFUC,
		Chain:        chainUC,
		Verify:       verifyUC,
		JWTSecret:    cfg.JWT.Secret,
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
