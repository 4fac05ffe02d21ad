package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/cart/model"
	"shop-backend/internal/domains/cart/repository"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/pkg/database"
)

type ServiceInterface interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	SyncCart(ctx context.Context, userID uuid.UUID, req model.SyncCartRequest) (*model.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// ProductReader is the slice of the product repository the cart needs.
type ProductReader interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]productModel.Product, error)
}

type CartService struct {
	repo     repository.Repository
	products ProductReader
	tx       database.TxRunner
}

func NewCartService(repo repository.Repository, products ProductReader, tx database.TxRunner) ServiceInterface {
	return &CartService{repo: repo, products: products, tx: tx}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	items, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return model.NewCart(items), nil
}

// SyncCart replaces the cart with req. Every product must exist and be active.
func (s *CartService) SyncCart(ctx context.Context, userID uuid.UUID, req model.SyncCartRequest) (*model.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lines := make(map[uuid.UUID]int, len(req.Items))
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, l := range req.Items {
		id := uuid.MustParse(l.ProductID)
		lines[id] = l.Quantity
		ids = append(ids, id)
	}

	if len(ids) > 0 {
		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		active := make(map[uuid.UUID]bool, len(products))
		for _, p := range products {
			active[p.ID] = p.IsActive
		}
		var unavailable []string
		for _, id := range ids {
			if !active[id] {
				unavailable = append(unavailable, id.String())
			}
		}
		if len(unavailable) > 0 {
			return nil, model.ErrProductUnavailable.WithDetails(map[string]interface{}{
				"productIds": unavailable,
			})
		}
	}

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		return s.repo.ReplaceTx(ctx, tx, userID, lines)
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		return s.repo.ClearTx(ctx, tx, userID)
	})
}
