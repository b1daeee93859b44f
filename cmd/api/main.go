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
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/ports"
	"github.com/jhoicas/rental-api/internal/application/rental"
	"github.com/jhoicas/rental-api/internal/application/usecase"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/internal/infrastructure/events"
	"github.com/jhoicas/rental-api/internal/infrastructure/kafka"
	"github.com/jhoicas/rental-api/internal/infrastructure/memory"
	"github.com/jhoicas/rental-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/rental-api/internal/interfaces/http"
	"github.com/jhoicas/rental-api/pkg/config"
	"github.com/jhoicas/rental-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios sin transacción más el runner, sea cual sea el backend.
type storage struct {
	txRunner inventory.TxRunner
	stores   repository.StoreRepository
	items    repository.ItemRepository
	txs      repository.StockTransactionRepository
	rentals  repository.RentalRepository
	returns  repository.ReturnRecordRepository
	close    func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		db := memory.New(cfg.DB.LockTimeout())
		return &storage{
			txRunner: db,
			stores:   db.Stores(),
			items:    db.Items(),
			txs:      db.Transactions(),
			rentals:  db.Rentals(),
			returns:  db.Returns(),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		txRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout()),
		stores:   postgres.NewStoreRepository(pool),
		items:    postgres.NewItemRepository(pool),
		txs:      postgres.NewStockTransactionRepository(pool),
		rentals:  postgres.NewRentalRepository(pool),
		returns:  postgres.NewReturnRecordRepository(pool),
		close:    pool.Close,
	}, nil
}

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
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// Eventos post-commit: Kafka si hay brokers, si no solo log
	var publisher ports.EventPublisher = events.NewLogPublisher(log)
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en Kafka")
	}

	ledger := inventory.NewLedger(st.txRunner, publisher, log)
	storeUC := usecase.NewStoreUseCase(st.stores)
	itemUC := inventory.NewItemUseCase(st.txRunner, st.stores, st.items, st.txs, ledger, log)
	createRentalUC := rental.NewCreateRentalUseCase(st.txRunner, st.stores, ledger, publisher, log)
	processReturnUC := rental.NewProcessReturnUseCase(st.txRunner, ledger, publisher, log)
	rentalQueryUC := rental.NewQueryUseCase(st.stores, st.rentals, st.returns)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs (requiere swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Rental API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StoreUC:       storeUC,
		ItemUC:        itemUC,
		CreateRental:  createRentalUC,
		ProcessReturn: processReturnUC,
		RentalQuery:   rentalQueryUC,
		JWTSecret:     cfg.JWT.Secret,
		Log:           log,
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
