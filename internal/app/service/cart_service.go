package service

import (
	"context"
	"errors"
	"sort"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/session"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCartLineNotFound = errors.New("product is not in the cart")

type CartService interface {
	View(ctx context.Context, sessionID string) (*model.CartView, error)
	Add(ctx context.Context, sessionID string, productID uint, quantity int, override bool, planID *uint) (*model.CartView, error)
	Update(ctx context.Context, sessionID string, productID uint, quantity int) (*model.CartView, error)
	Remove(ctx context.Context, sessionID string, productID uint) (*model.CartView, error)
	RemoveMany(ctx context.Context, sessionID string, productIDs []uint) (*model.CartView, error)
	Clear(ctx context.Context, sessionID string) error
}

type cartService struct {
	store       session.CartStore
	productRepo repository.ProductRepository
	planRepo    repository.PlanRepository
}

func NewCartService(
	store session.CartStore,
	productRepo repository.ProductRepository,
	planRepo repository.PlanRepository,
) CartService {
	return &cartService{
		store:       store,
		productRepo: productRepo,
		planRepo:    planRepo,
	}
}

// Add puts a product in the cart. The unit price is snapshotted on the first
// add, from the plan when one is chosen. Choosing a different plan later
// re-snapshots the line.
func (s *cartService) Add(ctx context.Context, sessionID string, productID uint, quantity int, override bool, planID *uint) (*model.CartView, error) {
	logger.Debug("Adding product to cart", map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
		"quantity":   quantity,
		"override":   override,
	})

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}

	var plan *model.ServicePlan
	if planID != nil {
		plan, err = s.planRepo.FindByID(*planID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPlanNotFound
			}
			return nil, err
		}
		if plan.ProductID != productID {
			return nil, ErrPlanProductMismatch
		}
		if !plan.IsActive {
			return nil, ErrPlanNotFound
		}
	}

	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := model.CartKey(productID)
	line, exists := cart[key]
	if !exists || (plan != nil && (line.PlanID == nil || *line.PlanID != plan.ID)) {
		line.Price = product.Price
		line.PlanID = nil
		if plan != nil {
			line.Price = plan.Price
			line.PlanID = &plan.ID
		}
	}
	if override {
		line.Quantity = quantity
	} else {
		line.Quantity += quantity
	}

	if line.Quantity <= 0 {
		delete(cart, key)
	} else {
		cart[key] = line
	}

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

func (s *cartService) Update(ctx context.Context, sessionID string, productID uint, quantity int) (*model.CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	key := model.CartKey(productID)
	line, ok := cart[key]
	if !ok {
		return nil, ErrCartLineNotFound
	}
	if quantity <= 0 {
		delete(cart, key)
	} else {
		line.Quantity = quantity
		cart[key] = line
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

func (s *cartService) Remove(ctx context.Context, sessionID string, productID uint) (*model.CartView, error) {
	return s.RemoveMany(ctx, sessionID, []uint{productID})
}

func (s *cartService) RemoveMany(ctx context.Context, sessionID string, productIDs []uint) (*model.CartView, error) {
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for _, id := range productIDs {
		delete(cart, model.CartKey(id))
	}
	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.view(cart)
}

func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *cartService) View(ctx context.Context, sessionID string) (*model.CartView, error) {
	if sessionID == "" {
		return &model.CartView{Items: []model.CartItemView{}, Subtotal: decimal.Zero}, nil
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(cart)
}

// view joins the lines with live products. Lines whose product is gone are
// left out of both the items and the totals.
func (s *cartService) view(cart model.Cart) (*model.CartView, error) {
	view := &model.CartView{Items: []model.CartItemView{}, Subtotal: decimal.Zero}
	if len(cart) == 0 {
		return view, nil
	}

	products, err := s.productRepo.FindByIDs(cart.ProductIDs())
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, id := range cart.ProductIDs() {
		line := cart[model.CartKey(id)]
		product, ok := byID[id]
		if !ok {
			continue
		}

		item := model.CartItemView{
			ProductID: id,
			Product:   &product,
			Quantity:  line.Quantity,
			Price:     line.Price,
			LineTotal: line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		}
		if line.PlanID != nil {
			if plan, err := s.planRepo.FindByID(*line.PlanID); err == nil {
				item.Plan = plan
			}
		}

		view.Items = append(view.Items, item)
		view.Count += line.Quantity
		view.Subtotal = view.Subtotal.Add(item.LineTotal)
	}

	sort.Slice(view.Items, func(i, j int) bool {
		return view.Items[i].ProductID < view.Items[j].ProductID
	})
	return view, nil
}
