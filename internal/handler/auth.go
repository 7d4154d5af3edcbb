package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/shopcart/internal/api"
	"github.com/nikolayk812/shopcart/internal/backend"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/session"
	"go.uber.org/zap"
)

type signInResponse struct {
	Token   string          `json:"token"`
	Session session.Session `json:"session"`
}

// POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input api.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := h.backend.Login(c.Request.Context(), port.Credentials{Email: input.Email, Password: input.Password})
	h.signIn(c, user, session.LoginCredentials, err)
}

// POST /api/auth/google
func (h *Handler) GoogleSignIn(c *gin.Context) {
	var input api.GoogleSignInRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	user, err := h.backend.GoogleSignIn(c.Request.Context(), input.IDToken)
	h.signIn(c, user, session.LoginGoogle, err)
}

func (h *Handler) signIn(c *gin.Context, user port.BackendUser, method session.LoginMethod, err error) {
	if errors.Is(err, backend.ErrUnauthorized) {
		respondError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.logger.Error("sign in failed", zap.String("method", string(method)), zap.Error(err))
		respondError(c, http.StatusBadGateway, "Sign in failed")
		return
	}

	token, sess, err := h.sessions.Issue(user, method)
	if err != nil {
		h.logger.Error("issue session", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Sign in failed")
		return
	}

	h.cookies.setCookie(c.Writer, sessionCookie, token, session.DefaultTTL)
	ok(c, signInResponse{Token: token, Session: sess})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	h.cookies.clearCookie(c.Writer, sessionCookie)
	h.cookies.clearCookie(c.Writer, cartIDCookie)
	c.Status(http.StatusNoContent)
}

// GET /api/auth/session
func (h *Handler) Session(c *gin.Context) {
	ok(c, currentSession(c))
}

// POST /api/newsletter
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var input api.NewsletterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if err := h.backend.SubscribeNewsletter(c.Request.Context(), input.Email); err != nil {
		h.logger.Error("newsletter subscribe", zap.Error(err))
		respondError(c, http.StatusBadGateway, "Failed to subscribe")
		return
	}

	c.Status(http.StatusNoContent)
}
