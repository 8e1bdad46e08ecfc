package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  *int  `json:"quantity"` // defaults to 1
	Override  bool  `json:"override"` // replace instead of add
	PlanID    *uint `json:"plan_id"`
}

type UpdateCartRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type RemoveManyRequest struct {
	ProductIDs []uint `json:"product_ids" binding:"required"`
}

// sessionID returns the cart key or answers 400 when the session middleware
// did not run.
func sessionID(c *gin.Context) (string, bool) {
	sid := middleware.GetSessionID(c)
	if sid == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Missing session")
		return "", false
	}
	return sid, true
}

// GetCart returns the session cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.View(c.Request.Context(), sid)
	if err != nil {
		respondError(c, err, "load cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddToCart adds a product, optionally with a service plan
// POST /api/v1/cart/add
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cart, err := ctrl.cartService.Add(c.Request.Context(), sid, req.ProductID, quantity, req.Override, req.PlanID)
	if err != nil {
		respondError(c, err, "add to cart")
		return
	}

	log.Debug("Cart updated", map[string]interface{}{
		"product_id": req.ProductID,
		"count":      cart.Count,
	})
	c.JSON(http.StatusOK, cart)
}

// UpdateCartItem sets the quantity of a line; <= 0 removes it
// PUT /api/v1/cart/items/:product_id
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := ctrl.cartService.Update(c.Request.Context(), sid, productID, *req.Quantity)
	if err != nil {
		respondError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveCartItem
// DELETE /api/v1/cart/items/:product_id
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "product_id")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.Remove(c.Request.Context(), sid, productID)
	if err != nil {
		respondError(c, err, "remove from cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveMany drops several lines at once
// POST /api/v1/cart/remove
func (ctrl *CartController) RemoveMany(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	var req RemoveManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cart, err := ctrl.cartService.RemoveMany(c.Request.Context(), sid, req.ProductIDs)
	if err != nil {
		respondError(c, err, "remove from cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sid, ok := sessionID(c)
	if !ok {
		return
	}
	if err := ctrl.cartService.Clear(c.Request.Context(), sid); err != nil {
		respondError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
