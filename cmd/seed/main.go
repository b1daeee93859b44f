// seed carga una tienda y su catálogo inicial desde un CSV.
//
// Uso: go run ./cmd/seed -slug centro -name "Tienda Centro" -file catalogo.csv [-latin1]
// Usa la misma configuración que la API (DATABASE_URL, DB_*). Los SKU ya existentes se omiten.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/application/inventory"
	"github.com/jhoicas/rental-api/internal/application/usecase"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/infrastructure/postgres"
	"github.com/jhoicas/rental-api/pkg/config"
	"github.com/jhoicas/rental-api/pkg/logger"
)

func main() {
	slug := flag.String("slug", "", "slug de la tienda (se crea si no existe)")
	name := flag.String("name", "", "nombre de la tienda nueva")
	tz := flag.String("timezone", "UTC", "zona horaria IANA de la tienda nueva")
	file := flag.String("file", "catalogo.csv", "CSV sku,name,category,price,rental_rate,quantity")
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	flag.Parse()

	if *slug == "" {
		fmt.Fprintln(os.Stderr, "-slug es obligatorio")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir catálogo")
	}
	defer f.Close()
	catalog, err := readCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, log); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	stores := postgres.NewStoreRepository(pool)
	storeUC := usecase.NewStoreUseCase(stores)
	store, err := storeUC.Create(ctx, dto.CreateStoreRequest{Name: *name, Slug: *slug, Timezone: *tz})
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		existing, gerr := stores.GetBySlug(ctx, *slug)
		if gerr != nil || existing == nil {
			log.Fatal().Err(gerr).Str("slug", *slug).Msg("buscar tienda existente")
		}
		store = &dto.StoreResponse{ID: existing.ID, Slug: existing.Slug}
		log.Info().Str("store_id", store.ID).Msg("tienda existente")
	case err != nil:
		log.Fatal().Err(err).Msg("crear tienda")
	default:
		log.Info().Str("store_id", store.ID).Msg("tienda creada")
	}

	txRunner := postgres.NewTxRunner(pool, cfg.DB.LockTimeout())
	ledger := inventory.NewLedger(txRunner, nil, log)
	itemUC := inventory.NewItemUseCase(txRunner, stores, postgres.NewItemRepository(pool),
		postgres.NewStockTransactionRepository(pool), ledger, log)

	var created, skipped int
	for _, req := range catalog {
		_, err := itemUC.Create(ctx, store.ID, nil, req)
		switch {
		case errors.Is(err, domain.ErrDuplicate):
			skipped++
		case err != nil:
			log.Fatal().Err(err).Str("sku", req.SKU).Msg("crear ítem")
		default:
			created++
		}
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("catálogo cargado")
}
