package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rental-api/internal/application/dto"
	"github.com/jhoicas/rental-api/internal/domain"
	"github.com/jhoicas/rental-api/internal/domain/entity"
	"github.com/jhoicas/rental-api/internal/domain/inventory"
	"github.com/jhoicas/rental-api/internal/domain/repository"
	"github.com/jhoicas/rental-api/pkg/logger"
	"github.com/shopspring/decimal"
)

const maxPageLimit = 100

// ItemUseCase catálogo de ítems de una tienda. La cantidad solo cambia a través del Ledger.
type ItemUseCase struct {
	txRunner TxRunner
	stores   repository.StoreRepository
	items    repository.ItemRepository
	txs      repository.StockTransactionRepository
	ledger   *Ledger
	log      *logger.Logger
	now      func() time.Time
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	txRunner TxRunner,
	stores repository.StoreRepository,
	items repository.ItemRepository,
	txs repository.StockTransactionRepository,
	ledger *Ledger,
	log *logger.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		txRunner: txRunner,
		stores:   stores,
		items:    items,
		txs:      txs,
		ledger:   ledger,
		log:      log.Component("items"),
		now:      time.Now,
	}
}

// Create crea un ítem. Si Quantity > 0 registra el movimiento "initial" en la misma transacción,
// de modo que la suma del ledger coincide con la cantidad desde el primer momento.
func (uc *ItemUseCase) Create(ctx context.Context, storeID string, actorID *string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	store, err := uc.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	sku := entity.NormalizeSKU(in.SKU)
	if sku == "" {
		return nil, domain.NewValidationError("sku", "requerido")
	}
	if in.Price.IsNegative() {
		return nil, domain.NewValidationError("price", "no puede ser negativo")
	}
	if in.RentalRate != nil && in.RentalRate.IsNegative() {
		return nil, domain.NewValidationError("rental_rate", "no puede ser negativa")
	}
	if in.Quantity < 0 {
		return nil, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	if err := inventory.CheckMagnitude("quantity", in.Quantity); err != nil {
		return nil, err
	}

	now := uc.now()
	item := &entity.Item{
		ID:          uuid.New().String(),
		StoreID:     store.ID,
		Name:        name,
		SKU:         sku,
		Description: in.Description,
		Category:    in.Category,
		IsRentable:  boolOr(in.IsRentable, true),
		IsSellable:  boolOr(in.IsSellable, true),
		Price:       in.Price,
		RentalRate:  copyDecimal(in.RentalRate),
		Quantity:    in.Quantity,
		Status:      entity.ItemStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		existing, err := repos.Items.GetByStoreAndSKU(ctx, store.ID, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		return repos.Transactions.Create(ctx, &entity.StockTransaction{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Delta:     item.Quantity,
			Reason:    entity.ReasonInitial,
			ActorID:   actorID,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("store_id", store.ID).Str("item_id", item.ID).Str("sku", sku).Int("quantity", item.Quantity).Msg("ítem creado")
	return toItemResponse(item), nil
}

// Get obtiene un ítem de la tienda.
func (uc *ItemUseCase) Get(ctx context.Context, storeID, id string) (*dto.ItemResponse, error) {
	item, err := uc.find(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista los ítems de la tienda con paginación.
func (uc *ItemUseCase) List(ctx context.Context, storeID string, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page = normalizePage(page)
	list, err := uc.items.ListByStore(ctx, storeID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica un patch sobre los campos de catálogo. La cantidad no se toca aquí.
func (uc *ItemUseCase) Update(ctx context.Context, storeID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	patch := entity.ItemPatch{
		Name:            in.Name,
		Description:     in.Description,
		Category:        in.Category,
		IsRentable:      in.IsRentable,
		IsSellable:      in.IsSellable,
		Price:           in.Price,
		RentalRate:      in.RentalRate,
		ClearRentalRate: in.ClearRentalRate,
		Status:          in.Status,
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return uc.Get(ctx, storeID, id)
	}

	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		item, err = repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil || item.StoreID != storeID {
			return domain.ErrItemNotFound
		}
		if item.Status == entity.ItemStatusArchived {
			return domain.ErrConflict
		}
		patch.Apply(item)
		item.UpdatedAt = uc.now()
		return repos.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Archive retira el ítem del catálogo. La fila y su ledger se conservan.
// Devuelve domain.ErrConflict si alguna línea de alquiler del ítem sigue pendiente.
func (uc *ItemUseCase) Archive(ctx context.Context, storeID, id string) (*dto.ItemResponse, error) {
	var item *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		var err error
		item, err = repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil || item.StoreID != storeID {
			return domain.ErrItemNotFound
		}
		if item.Status == entity.ItemStatusArchived {
			return nil
		}
		outstanding, err := repos.Rentals.CountOutstandingByItem(ctx, id)
		if err != nil {
			return err
		}
		if outstanding > 0 {
			return domain.ErrConflict
		}
		item.Status = entity.ItemStatusArchived
		item.UpdatedAt = uc.now()
		return repos.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("store_id", storeID).Str("item_id", id).Msg("ítem archivado")
	return toItemResponse(item), nil
}

// Adjust registra un ajuste manual de stock sobre un ítem de la tienda.
func (uc *ItemUseCase) Adjust(ctx context.Context, storeID, itemID string, actorID *string, in dto.AdjustStockRequest) (*dto.StockTransactionResponse, error) {
	reason := in.Reason
	if reason == "" {
		reason = entity.ReasonAdjustment
	}
	stx, err := uc.ledger.Adjust(ctx, AdjustInput{
		StoreID: storeID,
		ItemID:  itemID,
		Delta:   in.Delta,
		Reason:  reason,
		ActorID: actorID,
	})
	if err != nil {
		return nil, err
	}
	return toStockTransactionResponse(stx), nil
}

// RecordSale descuenta qty unidades vendidas. El ítem debe estar activo y ser vendible.
func (uc *ItemUseCase) RecordSale(ctx context.Context, storeID, itemID string, actorID *string, in dto.RecordSaleRequest) (*dto.StockTransactionResponse, error) {
	if in.Qty <= 0 {
		return nil, domain.NewValidationError("qty", "debe ser mayor que cero")
	}
	if err := inventory.CheckMagnitude("qty", in.Qty); err != nil {
		return nil, err
	}
	stx, err := uc.ledger.Adjust(ctx, AdjustInput{
		StoreID: storeID,
		ItemID:  itemID,
		Delta:   -in.Qty,
		Reason:  entity.ReasonSale,
		ActorID: actorID,
		Require: func(item *entity.Item) error {
			if !item.IsActive() {
				return domain.NewValidationError("item_id", "el ítem no está activo")
			}
			if !item.IsSellable {
				return domain.NewValidationError("item_id", "el ítem no es vendible")
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return toStockTransactionResponse(stx), nil
}

// ListTransactions historial del ledger de un ítem, más reciente primero.
func (uc *ItemUseCase) ListTransactions(ctx context.Context, storeID, itemID string, page dto.PageRequest) (*dto.StockTransactionListResponse, error) {
	if _, err := uc.find(ctx, storeID, itemID); err != nil {
		return nil, err
	}
	page = normalizePage(page)
	list, err := uc.txs.ListByItem(ctx, itemID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockTransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toStockTransactionResponse(t))
	}
	return &dto.StockTransactionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// VerifyLedger compara la cantidad del ítem con la suma de sus movimientos.
func (uc *ItemUseCase) VerifyLedger(ctx context.Context, storeID, itemID string) (*dto.LedgerCheckResponse, error) {
	item, err := uc.find(ctx, storeID, itemID)
	if err != nil {
		return nil, err
	}
	sum, err := uc.txs.SumByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	res := &dto.LedgerCheckResponse{
		ItemID:     item.ID,
		Quantity:   item.Quantity,
		LedgerSum:  sum,
		Consistent: item.Quantity == sum,
	}
	if !res.Consistent {
		uc.log.Error().Str("item_id", item.ID).Int("quantity", item.Quantity).Int("ledger_sum", sum).Msg("ledger inconsistente")
	}
	return res, nil
}

func (uc *ItemUseCase) find(ctx context.Context, storeID, id string) (*entity.Item, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.StoreID != storeID {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func validatePatch(p entity.ItemPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return domain.NewValidationError("name", "no puede quedar vacío")
	}
	if p.Price != nil && p.Price.IsNegative() {
		return domain.NewValidationError("price", "no puede ser negativo")
	}
	if p.RentalRate != nil && p.RentalRate.IsNegative() {
		return domain.NewValidationError("rental_rate", "no puede ser negativa")
	}
	if p.Status != nil && *p.Status != entity.ItemStatusActive && *p.Status != entity.ItemStatusInactive {
		return domain.NewValidationError("status", "solo active o inactive; para archivar use DELETE")
	}
	return nil
}

func normalizePage(p dto.PageRequest) dto.PageRequest {
	p.DefaultPage()
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func toItemResponse(i *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          i.ID,
		StoreID:     i.StoreID,
		Name:        i.Name,
		SKU:         i.SKU,
		Description: i.Description,
		Category:    i.Category,
		IsRentable:  i.IsRentable,
		IsSellable:  i.IsSellable,
		Price:       i.Price,
		RentalRate:  i.RentalRate,
		Quantity:    i.Quantity,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toStockTransactionResponse(t *entity.StockTransaction) *dto.StockTransactionResponse {
	return &dto.StockTransactionResponse{
		ID:        t.ID,
		ItemID:    t.ItemID,
		Delta:     t.Delta,
		Reason:    t.Reason,
		ActorID:   t.ActorID,
		CreatedAt: t.CreatedAt,
	}
}
