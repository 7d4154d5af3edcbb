package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/session"
	"go.uber.org/zap"
)

type Handler struct {
	shopify  port.ShopifyCarts
	backend  port.Backend
	guest    port.CartRepository
	sessions *session.Manager
	cookies  CookieConfig
	logger   *zap.Logger
}

type Deps struct {
	Shopify  port.ShopifyCarts
	Backend  port.Backend
	Guest    port.CartRepository
	Sessions *session.Manager
	Cookies  CookieConfig
	Logger   *zap.Logger
}

func New(deps Deps) (*Handler, error) {
	switch {
	case deps.Shopify == nil:
		return nil, errors.New("shopify client is nil")
	case deps.Backend == nil:
		return nil, errors.New("backend client is nil")
	case deps.Guest == nil:
		return nil, errors.New("guest repository is nil")
	case deps.Sessions == nil:
		return nil, errors.New("session manager is nil")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		shopify:  deps.Shopify,
		backend:  deps.Backend,
		guest:    deps.Guest,
		sessions: deps.Sessions,
		cookies:  deps.Cookies,
		logger:   logger,
	}, nil
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	auth := r.Group("/api/auth")
	auth.POST("/login", h.Login)
	auth.POST("/google", h.GoogleSignIn)
	auth.POST("/logout", h.Logout)
	auth.GET("/session", h.RequireSession, h.Session)

	r.POST("/api/newsletter", h.SubscribeNewsletter)

	shop := r.Group("/api/shopify", h.RequireSession)
	shop.POST("/addItemToCart", h.AddItemToCart)
	shop.GET("/getCart", h.GetCart)
	shop.POST("/updateCart", h.UpdateCart)
	shop.POST("/removeItemFromCart", h.RemoveItemFromCart)
	shop.POST("/clearCart", h.ClearCart)

	guest := r.Group("/api/guest/cart", h.GuestID)
	guest.GET("", h.GetGuestCart)
	guest.POST("", h.AddGuestItem)
	guest.PATCH("", h.UpdateGuestItem)
	guest.DELETE("/item", h.RemoveGuestItem)
	guest.DELETE("", h.ClearGuestCart)
}

func respondError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
