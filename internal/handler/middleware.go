package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/session"
	"go.uber.org/zap"
)

const (
	sessionKey   = "session"
	guestIDKey   = "guest_id"
	requestIDKey = "request_id"
)

// RequestLogger logs one line per request and tags it with an X-Request-ID.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RequireSession rejects requests without a valid session token, read from
// a Bearer Authorization header or the session cookie. Other Authorization
// schemes are ignored.
func (h *Handler) RequireSession(c *gin.Context) {
	var token string
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if token == "" {
		token, _ = c.Cookie(sessionCookie)
	}
	if token == "" {
		respondError(c, 401, "Unauthorized")
		return
	}

	s, err := h.sessions.Parse(token)
	if err != nil {
		respondError(c, 401, "Invalid or expired session")
		return
	}

	c.Set(sessionKey, s)
	c.Next()
}

// GuestID resolves the guest cart owner from the X-Guest-ID header or the
// guestId cookie and issues a new one on first use.
func (h *Handler) GuestID(c *gin.Context) {
	guestID := strings.TrimSpace(c.GetHeader(guestIDHeader))
	if guestID == "" {
		guestID, _ = c.Cookie(guestIDCookie)
	}
	if guestID == "" {
		guestID = uuid.NewString()
		h.cookies.setCookie(c.Writer, guestIDCookie, guestID, guestCookieMaxAge)
	}

	c.Header(guestIDHeader, guestID)
	c.Set(guestIDKey, guestID)
	c.Next()
}

func currentSession(c *gin.Context) session.Session {
	s, _ := c.Get(sessionKey)
	sess, _ := s.(session.Session)
	return sess
}
