package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ConsultationController struct {
	consultationService service.ConsultationService
	users               UserLoader
}

func NewConsultationController(consultationService service.ConsultationService, users UserLoader) *ConsultationController {
	return &ConsultationController{
		consultationService: consultationService,
		users:               users,
	}
}

type CreateConsultationRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Note      string `json:"note" binding:"max=2000"`
}

type ConsultationStatusRequest struct {
	Status model.ConsultationStatus `json:"status" binding:"required"`
}

type ConsultationDoneRequest struct {
	Note string `json:"note" binding:"max=2000"`
}

type ConsultationOrderRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note" binding:"max=2000"`
}

// Create asks staff to call the customer back about a product
// POST /api/v1/consultations
func (ctrl *ConsultationController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	request, err := ctrl.consultationService.Create(userID, req.ProductID, req.Note)
	if err != nil {
		respondError(c, err, "create consultation")
		return
	}

	log.Info("Consultation requested", map[string]interface{}{
		"user_id":    userID,
		"product_id": req.ProductID,
		"request_id": request.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"request": request,
	})
}

// List
// GET /api/v1/staff/consultations?status=&page=
func (ctrl *ConsultationController) List(c *gin.Context) {
	result, err := ctrl.consultationService.List(model.ConsultationStatus(c.Query("status")), c.Query("page"))
	if err != nil {
		respondError(c, err, "list consultations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get
// GET /api/v1/staff/consultations/:id
func (ctrl *ConsultationController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	request, err := ctrl.consultationService.Get(id)
	if err != nil {
		respondError(c, err, "get consultation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// SetStatus
// POST /api/v1/staff/consultations/:id/status
func (ctrl *ConsultationController) SetStatus(c *gin.Context) {
	staff, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ConsultationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	request, err := ctrl.consultationService.SetStatus(id, req.Status, staff)
	if err != nil {
		respondError(c, err, "update consultation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// MarkDone closes the request and appends the staff note
// POST /api/v1/staff/consultations/:id/done
func (ctrl *ConsultationController) MarkDone(c *gin.Context) {
	staff, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ConsultationDoneRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		bindError(c, err)
		return
	}

	request, err := ctrl.consultationService.MarkDone(id, staff, req.Note)
	if err != nil {
		respondError(c, err, "update consultation")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"request": request,
	})
}

// CreateOrder drafts an order for the requested product
// POST /api/v1/staff/consultations/:id/order
func (ctrl *ConsultationController) CreateOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	req := ConsultationOrderRequest{Quantity: 1}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		bindError(c, err)
		return
	}

	order, err := ctrl.consultationService.CreateOrder(id, req.Quantity, req.Note)
	if err != nil {
		respondError(c, err, "create order")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Draft order created from consultation", map[string]interface{}{
		"request_id": id,
		"order_id":   order.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"order": order,
	})
}
