package httpserver

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pos-storefront/internal/metrics"
)

const (
	requestIDHeader      = "X-Request-Id"
	requestIDLengthLimit = 128

	requestIDKey = "req_id"
	sessionKey   = "sid"
)

var (
	reqSeq    int64
	reqPrefix string
)

func init() {
	var buf [12]byte
	var b64 string
	for len(b64) < 10 {
		_, _ = rand.Read(buf[:])
		b64 = base64.StdEncoding.EncodeToString(buf[:])
		b64 = strings.NewReplacer("+", "", "/", "").Replace(b64)
	}
	reqPrefix = b64[0:10]
}

// requestID takes the caller's X-Request-Id or generates a prefix-counter id.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = fmt.Sprintf("%s-%d", reqPrefix, atomic.AddInt64(&reqSeq, 1))
		} else if len(id) > requestIDLengthLimit {
			id = id[:requestIDLengthLimit]
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entry := log.WithFields(logrus.Fields{
			"req_id":     c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remoteaddr": c.ClientIP(),
		})
		entry.Info("started")
		start := time.Now().UTC()

		c.Next()

		entry.WithFields(logrus.Fields{
			"statuscode": c.Writer.Status(),
			"bytes":      c.Writer.Size(),
			"since":      time.Since(start).Nanoseconds(),
		}).Info("completed")
	}
}

func recovery(log logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(logrus.Fields{
			"req_id": c.GetString(requestIDKey),
			"panic":  recovered,
		}).Error("PANIC")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
	})
}

// sessionID makes sure the scs session carries a cart id and exposes it to
// handlers.
func sessionID(sm *scs.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sid := sm.GetString(ctx, sessionKey)
		if sid == "" {
			sid = uuid.NewString()
			sm.Put(ctx, sessionKey, sid)
		}
		c.Set(sessionKey, sid)
		c.Next()
	}
}

func rateLimit(l limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			m.Limited()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
