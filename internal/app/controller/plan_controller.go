package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
)

type PlanController struct {
	planService service.PlanService
}

func NewPlanController(planService service.PlanService) *PlanController {
	return &PlanController{
		planService: planService,
	}
}

type PlanRequest struct {
	Name       *string                `json:"name" binding:"omitempty,max=120"`
	Term       *model.PlanTerm        `json:"term"`
	CustomDays *int                   `json:"custom_days"`
	Price      *util.LocalizedDecimal `json:"price"`
	IsActive   *bool                  `json:"is_active"`
	Ordering   *int                   `json:"ordering"`
}

func (r PlanRequest) input() service.PlanInput {
	input := service.PlanInput{
		Name:       r.Name,
		Term:       r.Term,
		CustomDays: r.CustomDays,
		IsActive:   r.IsActive,
		Ordering:   r.Ordering,
	}
	if r.Price != nil {
		price := r.Price.Decimal
		input.Price = &price
	}
	return input
}

// ListPlans returns every plan of a product, retired ones included
// GET /api/v1/staff/products/:id/plans
func (ctrl *PlanController) ListPlans(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	plans, err := ctrl.planService.ListAllPlans(productID)
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
	})
}

// CreatePlan
// POST /api/v1/staff/products/:id/plans
func (ctrl *PlanController) CreatePlan(c *gin.Context) {
	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	plan, err := ctrl.planService.CreatePlan(productID, req.input())
	if err != nil {
		respondError(c, err, "create plan")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Service plan created", map[string]interface{}{
		"plan_id":    plan.ID,
		"product_id": productID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"plan": plan,
	})
}

// UpdatePlan
// PUT /api/v1/staff/plans/:id
func (ctrl *PlanController) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	plan, err := ctrl.planService.UpdatePlan(id, req.input())
	if err != nil {
		respondError(c, err, "update plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan": plan,
	})
}

// DeletePlan
// DELETE /api/v1/staff/plans/:id
func (ctrl *PlanController) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.planService.DeletePlan(id); err != nil {
		respondError(c, err, "delete plan")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Plan deleted",
	})
}

// MySubscriptions
// GET /api/v1/subscriptions?page=
func (ctrl *PlanController) MySubscriptions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := ctrl.planService.ListMySubscriptions(userID, c.Query("page"))
	if err != nil {
		respondError(c, err, "list subscriptions")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListSubscriptions
// GET /api/v1/staff/subscriptions?status=&page=
func (ctrl *PlanController) ListSubscriptions(c *gin.Context) {
	status := model.SubscriptionStatus(c.Query("status"))
	result, err := ctrl.planService.ListSubscriptions(status, c.Query("page"))
	if err != nil {
		respondError(c, err, "list subscriptions")
		return
	}
	c.JSON(http.StatusOK, result)
}
