package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/shopify"
	"go.uber.org/zap"
)

const userIDAttribute = "user_id"

// maxClearPasses bounds ClearCart against a cart that keeps returning lines.
const maxClearPasses = 20

// POST /api/shopify/addItemToCart
func (h *Handler) AddItemToCart(c *gin.Context) {
	var input api.AddItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	userID := currentSession(c).UserID
	if input.UserID != "" && input.UserID != userID {
		respondError(c, http.StatusForbidden, "userId does not match session")
		return
	}

	ctx := c.Request.Context()
	lines := []port.CartLineInput{{MerchandiseID: input.MerchandiseID, Quantity: input.Quantity}}

	cartID, err := h.resolveCartID(c, userID)
	if err != nil {
		h.shopifyError(c, "resolve cart id", err)
		return
	}

	if cartID == "" {
		cart, err := h.createCart(c, userID, lines)
		if err != nil {
			h.shopifyError(c, "create cart", err)
			return
		}
		ok(c, api.FromDomainCart(cart))
		return
	}

	cart, err := h.shopify.AddLines(ctx, cartID, lines)
	if errors.Is(err, domain.ErrCartNotFound) {
		h.logger.Info("cart expired, creating a new one", zap.String("cart_id", cartID), zap.String("user_id", userID))
		cart, err = h.createCart(c, userID, lines)
	}
	if err != nil {
		h.shopifyError(c, "add lines", err)
		return
	}

	if err := h.shopify.UpdateAttributes(ctx, cart.ID, map[string]string{userIDAttribute: userID}); err != nil {
		h.logger.Warn("update cart attributes", zap.String("cart_id", cart.ID), zap.Error(err))
	}

	ok(c, api.FromDomainCart(cart))
}

// GET /api/shopify/getCart
func (h *Handler) GetCart(c *gin.Context) {
	userID := currentSession(c).UserID
	ctx := c.Request.Context()

	cartID, err := h.resolveCartID(c, userID)
	if err != nil {
		h.shopifyError(c, "resolve cart id", err)
		return
	}

	if cartID == "" {
		cart, err := h.createCart(c, userID, nil)
		if err != nil {
			h.shopifyError(c, "create cart", err)
			return
		}
		ok(c, api.FromDomainCart(cart))
		return
	}

	cart, err := h.shopify.GetCart(ctx, cartID)
	if errors.Is(err, domain.ErrCartNotFound) {
		// the cookie or backend record points at an expired cart; replace it
		h.logger.Info("cart expired, repairing", zap.String("cart_id", cartID), zap.String("user_id", userID))
		cart, err = h.createCart(c, userID, nil)
	}
	if err != nil {
		h.shopifyError(c, "get cart", err)
		return
	}

	ok(c, api.FromDomainCart(cart))
}

// POST /api/shopify/updateCart
func (h *Handler) UpdateCart(c *gin.Context) {
	var input api.UpdateCartRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	cartID, found := h.existingCartID(c)
	if !found {
		return
	}

	cart, err := h.shopify.UpdateLines(c.Request.Context(), cartID,
		[]port.CartLineUpdate{{LineID: input.LineID, Quantity: input.Quantity}})
	if err != nil {
		h.shopifyError(c, "update lines", err)
		return
	}

	ok(c, api.FromDomainCart(cart))
}

// POST /api/shopify/removeItemFromCart
func (h *Handler) RemoveItemFromCart(c *gin.Context) {
	var input api.RemoveItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	cartID, found := h.existingCartID(c)
	if !found {
		return
	}

	cart, err := h.shopify.RemoveLines(c.Request.Context(), cartID, []string{input.LineID})
	if err != nil {
		h.shopifyError(c, "remove lines", err)
		return
	}

	ok(c, api.FromDomainCart(cart))
}

// POST /api/shopify/clearCart
func (h *Handler) ClearCart(c *gin.Context) {
	cartID, found := h.existingCartID(c)
	if !found {
		return
	}
	ctx := c.Request.Context()

	cart, err := h.shopify.GetCart(ctx, cartID)
	if err != nil {
		h.shopifyError(c, "get cart", err)
		return
	}

	// a cart read returns one page of lines; keep removing until it is empty
	for pass := 0; len(cart.Items) > 0; pass++ {
		if pass == maxClearPasses {
			h.shopifyError(c, "remove lines", fmt.Errorf("cart still has %d lines after %d passes", len(cart.Items), pass))
			return
		}

		lineIDs := make([]string, 0, len(cart.Items))
		for _, item := range cart.Items {
			lineIDs = append(lineIDs, item.LineID)
		}

		cart, err = h.shopify.RemoveLines(ctx, cartID, lineIDs)
		if err != nil {
			h.shopifyError(c, "remove lines", err)
			return
		}
	}

	ok(c, api.FromDomainCart(cart))
}

// resolveCartID looks at the cartId cookie first and falls back to the id
// mirrored in the backend. It returns "" when the user has no cart yet.
func (h *Handler) resolveCartID(c *gin.Context, userID string) (string, error) {
	if cartID, err := c.Cookie(cartIDCookie); err == nil && cartID != "" {
		return cartID, nil
	}

	cartID, err := h.backend.GetCartID(c.Request.Context(), userID)
	if err != nil {
		return "", err
	}
	if cartID != "" {
		h.cookies.setCookie(c.Writer, cartIDCookie, cartID, cartCookieMaxAge)
	}

	return cartID, nil
}

func (h *Handler) existingCartID(c *gin.Context) (string, bool) {
	cartID, err := h.resolveCartID(c, currentSession(c).UserID)
	if err != nil {
		h.shopifyError(c, "resolve cart id", err)
		return "", false
	}
	if cartID == "" {
		respondError(c, http.StatusNotFound, "Cart not found")
		return "", false
	}
	return cartID, true
}

// createCart creates a Shopify cart tagged with the user and records its id in
// the cookie and the backend.
func (h *Handler) createCart(c *gin.Context, userID string, lines []port.CartLineInput) (domain.Cart, error) {
	ctx := c.Request.Context()

	cart, err := h.shopify.CreateCart(ctx, lines, map[string]string{userIDAttribute: userID})
	if err != nil {
		return domain.Cart{}, err
	}

	h.cookies.setCookie(c.Writer, cartIDCookie, cart.ID, cartCookieMaxAge)
	h.mirrorCartID(ctx, userID, cart.ID)

	return cart, nil
}

func (h *Handler) mirrorCartID(ctx context.Context, userID, cartID string) {
	if err := h.backend.SaveCartID(ctx, userID, cartID); err != nil {
		h.logger.Warn("mirror cart id to backend", zap.String("user_id", userID), zap.String("cart_id", cartID), zap.Error(err))
	}
}

func (h *Handler) shopifyError(c *gin.Context, op string, err error) {
	var userErrs shopify.UserErrors

	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		h.cookies.clearCookie(c.Writer, cartIDCookie)
		respondError(c, http.StatusNotFound, "Cart not found")
	case errors.As(err, &userErrs):
		respondError(c, http.StatusBadRequest, userErrs.Error())
	default:
		h.logger.Error(op, zap.String("user_id", currentSession(c).UserID), zap.Error(err))
		respondError(c, http.StatusBadGateway, "Cart service unavailable")
	}
}
