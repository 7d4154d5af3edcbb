package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/domain"
	"go.uber.org/zap"
)

// GET /api/guest/cart
func (h *Handler) GetGuestCart(c *gin.Context) {
	h.respondGuestCart(c)
}

// POST /api/guest/cart
func (h *Handler) AddGuestItem(c *gin.Context) {
	var input api.GuestItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, err := input.ToDomain()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.guest.AddItem(c.Request.Context(), c.GetString(guestIDKey), item); err != nil {
		h.guestError(c, "add guest item", err)
		return
	}

	h.respondGuestCart(c)
}

// PATCH /api/guest/cart
func (h *Handler) UpdateGuestItem(c *gin.Context) {
	var input api.GuestUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := h.guest.UpdateQuantity(c.Request.Context(), c.GetString(guestIDKey), input.Key, input.Quantity); err != nil {
		h.guestError(c, "update guest item", err)
		return
	}

	h.respondGuestCart(c)
}

// DELETE /api/guest/cart/item?key=
func (h *Handler) RemoveGuestItem(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		respondError(c, http.StatusBadRequest, "key is required")
		return
	}

	deleted, err := h.guest.RemoveItem(c.Request.Context(), c.GetString(guestIDKey), key)
	if err != nil {
		h.guestError(c, "remove guest item", err)
		return
	}
	if !deleted {
		respondError(c, http.StatusNotFound, "Cart item not found")
		return
	}

	h.respondGuestCart(c)
}

// DELETE /api/guest/cart
func (h *Handler) ClearGuestCart(c *gin.Context) {
	if err := h.guest.Clear(c.Request.Context(), c.GetString(guestIDKey)); err != nil {
		h.guestError(c, "clear guest cart", err)
		return
	}

	h.respondGuestCart(c)
}

func (h *Handler) respondGuestCart(c *gin.Context) {
	cart, err := h.guest.GetCart(c.Request.Context(), c.GetString(guestIDKey))
	if err != nil {
		h.guestError(c, "get guest cart", err)
		return
	}

	ok(c, api.FromDomainCart(cart))
}

func (h *Handler) guestError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidPrice):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCurrencyMismatch):
		respondError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(op, zap.String("guest_id", c.GetString(guestIDKey)), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to update guest cart")
	}
}
