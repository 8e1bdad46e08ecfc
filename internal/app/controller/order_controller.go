package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
	users        UserLoader
	successURL   string
}

func NewOrderController(orderService service.OrderService, users UserLoader, successURL string) *OrderController {
	return &OrderController{
		orderService: orderService,
		users:        users,
		successURL:   successURL,
	}
}

type CheckoutRequest struct {
	service.CheckoutSelection
	Note string `json:"note" binding:"max=2000"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

type BulkCancelRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"max=255"`
}

// Checkout turns the selected cart lines into a pending order
// POST /api/v1/cart/checkout
func (ctrl *OrderController) Checkout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := ctrl.orderService.Checkout(c.Request.Context(), userID, sid, req.CheckoutSelection, req.Note)
	if err != nil {
		respondError(c, err, "create order")
		return
	}

	log.Info("Order placed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.Total.String(),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Order placed",
		"order":    order,
		"redirect": ctrl.successURL,
	})
}

// MyOrders
// GET /api/v1/orders?status=&page=
func (ctrl *OrderController) MyOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	result, err := ctrl.orderService.ListMyOrders(userID, model.OrderStatus(c.Query("status")), c.Query("page"))
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

// MyOrder
// GET /api/v1/orders/:id
func (ctrl *OrderController) MyOrder(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.orderService.GetMyOrder(userID, orderID)
	if err != nil {
		respondError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// ListOrders
// GET /api/v1/staff/orders?status=&page=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	result, err := ctrl.orderService.ListOrders(model.OrderStatus(c.Query("status")), c.Query("page"))
	if err != nil {
		respondError(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrder
// GET /api/v1/staff/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := ctrl.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// ConfirmOrder
// POST /api/v1/staff/orders/:id/confirm
func (ctrl *OrderController) ConfirmOrder(c *gin.Context) {
	staff, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.Confirm(orderID, staff)
	if err != nil {
		respondError(c, err, "confirm order")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order confirmed", map[string]interface{}{
		"order_id": order.ID,
		"staff_id": staff.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// CancelOrder
// POST /api/v1/staff/orders/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	staff, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		bindError(c, err)
		return
	}

	order, err := ctrl.orderService.Cancel(orderID, staff, req.Reason)
	if err != nil {
		respondError(c, err, "cancel order")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// BulkCancel cancels the pending orders among order_ids
// POST /api/v1/staff/orders/bulk-cancel
func (ctrl *OrderController) BulkCancel(c *gin.Context) {
	staff, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	var req BulkCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cancelled, err := ctrl.orderService.BulkCancel(req.OrderIDs, staff, req.Reason)
	if err != nil {
		respondError(c, err, "cancel orders")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Orders cancelled in bulk", map[string]interface{}{
		"requested": len(req.OrderIDs),
		"cancelled": cancelled,
		"staff_id":  staff.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"cancelled": cancelled,
	})
}
