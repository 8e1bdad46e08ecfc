package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	ConsultationsPerPage = 30
	ConsultationCooldown = 2 * time.Minute
)

var (
	ErrConsultationNotFound    = errors.New("consultation request not found")
	ErrConsultationTooFrequent = errors.New("a request for this product was just sent")
	ErrInvalidConsultStatus    = errors.New("invalid consultation status")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
)

type ConsultationPage struct {
	Requests []model.ConsultationRequest `json:"requests"`
	Status   model.ConsultationStatus    `json:"status,omitempty"`
	util.Page
}

type ConsultationService interface {
	Create(userID, productID uint, note string) (*model.ConsultationRequest, error)
	List(status model.ConsultationStatus, page string) (*ConsultationPage, error)
	Get(id uint) (*model.ConsultationRequest, error)
	SetStatus(id uint, status model.ConsultationStatus, staff *model.User) (*model.ConsultationRequest, error)
	MarkDone(id uint, staff *model.User, note string) (*model.ConsultationRequest, error)
	CreateOrder(id uint, quantity int, note string) (*model.Order, error)
}

type consultationService struct {
	consultRepo repository.ConsultationRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	publisher   EventPublisher
	now         func() time.Time
}

// NewConsultationService builds the service. publisher may be nil.
func NewConsultationService(
	consultRepo repository.ConsultationRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	publisher EventPublisher,
) ConsultationService {
	return &consultationService{
		consultRepo: consultRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Create opens a ticket for the product. A second "new" ticket for the same
// product within the cooldown is refused.
func (s *consultationService) Create(userID, productID uint, note string) (*model.ConsultationRequest, error) {
	logger.Info("Creating consultation request", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
	})

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	recent, err := s.consultRepo.HasRecentOpen(userID, productID, s.now().Add(-ConsultationCooldown))
	if err != nil {
		return nil, err
	}
	if recent {
		logger.Warn("Consultation request throttled", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrConsultationTooFrequent
	}

	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		return nil, err
	}

	req := &model.ConsultationRequest{
		UserID:        userID,
		ProductID:     productID,
		Note:          strings.TrimSpace(note),
		Status:        model.ConsultationNew,
		CustomerPhone: profile.PhoneValue(),
	}
	if err := s.consultRepo.Create(req); err != nil {
		return nil, err
	}

	created, err := s.Get(req.ID)
	if err != nil {
		return nil, err
	}
	if s.publisher != nil {
		s.publisher.Publish(EventConsultationNew, created)
	}
	return created, nil
}

func (s *consultationService) List(status model.ConsultationStatus, page string) (*ConsultationPage, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidConsultStatus
	}

	_, total, err := s.consultRepo.List(repository.ConsultationFilter{Status: status, Limit: 1})
	if err != nil {
		return nil, err
	}
	p := util.Paginate(page, ConsultationsPerPage, total)
	reqs, _, err := s.consultRepo.List(repository.ConsultationFilter{
		Status: status,
		Offset: p.Offset(),
		Limit:  p.PerPage,
	})
	if err != nil {
		return nil, err
	}
	return &ConsultationPage{Requests: reqs, Status: status, Page: p}, nil
}

func (s *consultationService) Get(id uint) (*model.ConsultationRequest, error) {
	req, err := s.consultRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}
	return req, nil
}

// SetStatus moves a ticket between new, contacted and cancelled. Closing a
// ticket as done goes through MarkDone.
func (s *consultationService) SetStatus(id uint, status model.ConsultationStatus, staff *model.User) (*model.ConsultationRequest, error) {
	switch status {
	case model.ConsultationNew, model.ConsultationContacted, model.ConsultationCancelled:
	default:
		return nil, ErrInvalidConsultStatus
	}

	fields := map[string]interface{}{"status": status}
	if status != model.ConsultationNew {
		fields["handled_by_id"] = staff.ID
	}
	if err := s.consultRepo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsultationNotFound
		}
		return nil, err
	}

	logger.Info("Consultation status changed", map[string]interface{}{
		"consultation_id": id,
		"status":          status,
		"staff_id":        staff.ID,
	})
	return s.Get(id)
}

func (s *consultationService) MarkDone(id uint, staff *model.User, note string) (*model.ConsultationRequest, error) {
	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"status":        model.ConsultationDone,
		"handled_by_id": staff.ID,
		"handled_at":    s.now(),
	}
	if note = strings.TrimSpace(note); note != "" {
		if req.Note != "" {
			fields["note"] = req.Note + "\n" + note
		} else {
			fields["note"] = note
		}
	}
	if err := s.consultRepo.UpdateFields(id, fields); err != nil {
		return nil, err
	}

	logger.Info("Consultation marked done", map[string]interface{}{
		"consultation_id": id,
		"staff_id":        staff.ID,
	})
	return s.Get(id)
}

// CreateOrder drafts an order for the ticket's customer at the product's
// current price. Staff confirm it like any other order.
func (s *consultationService) CreateOrder(id uint, quantity int, note string) (*model.Order, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	consultationID := req.ID
	order := &model.Order{
		UserID:         req.UserID,
		Status:         model.OrderStatusDraft,
		Note:           strings.TrimSpace(note),
		ConsultationID: &consultationID,
		Items: []model.OrderItem{{
			ProductID: product.ID,
			Price:     product.Price,
			Quantity:  quantity,
		}},
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	logger.Info("Draft order created from consultation", map[string]interface{}{
		"consultation_id": id,
		"order_id":        order.ID,
	})

	created, err := s.orderRepo.FindByID(order.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}
