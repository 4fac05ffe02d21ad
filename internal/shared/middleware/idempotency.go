package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

var (
	ErrIdempotencyInFlight = apperror.New(apperror.KindStateConflict, "IDEM_001",
		"A request with this idempotency key is still being processed")
	ErrIdempotencyKeyReused = apperror.New(apperror.KindStateConflict, "IDEM_002",
		"This idempotency key was already used with a different request body")
)

type idempotentRecord struct {
	Done        bool            `json:"done"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Status      int             `json:"status,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key.
// Keys are scoped per user and route and bound to the request body.
// Cache failures fall through to normal handling.
func Idempotency(store cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		fingerprint, err := requestFingerprint(c)
		if err != nil {
			response.HandleError(c, apperror.Validation(map[string]interface{}{
				"body": "could not read request body",
			}))
			c.Abort()
			return
		}

		userID, _ := UserIDFromContext(c)
		cacheKey := "idem:" + userID.String() + ":" + c.FullPath() + ":" + key
		ctx := c.Request.Context()

		if handled := replay(c, store, cacheKey, fingerprint); handled {
			return
		}

		claimed, err := store.SetNX(ctx, cacheKey, idempotentRecord{Fingerprint: fingerprint}, ttl)
		if err != nil {
			logger.Error("idempotency claim failed", err)
			c.Next()
			return
		}
		if !claimed {
			if handled := replay(c, store, cacheKey, fingerprint); !handled {
				response.HandleError(c, ErrIdempotencyInFlight)
				c.Abort()
			}
			return
		}

		release := func() {
			if err := store.Delete(context.WithoutCancel(ctx), cacheKey); err != nil {
				logger.Error("idempotency release failed", err)
			}
		}
		defer func() {
			if p := recover(); p != nil {
				release()
				panic(p)
			}
		}()

		w := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if w.Status() >= http.StatusInternalServerError {
			release()
			return
		}

		record := idempotentRecord{
			Done:        true,
			Fingerprint: fingerprint,
			Status:      w.Status(),
			Body:        json.RawMessage(w.body.Bytes()),
		}
		if err := store.Set(ctx, cacheKey, record, ttl); err != nil {
			logger.Error("idempotency store failed", err)
		}
	}
}

// requestFingerprint hashes the body and puts it back for the handler.
func requestFingerprint(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

// replay answers from the stored record. It reports whether the request was handled.
func replay(c *gin.Context, store cache.Cache, cacheKey, fingerprint string) bool {
	var record idempotentRecord
	found, err := store.Get(c.Request.Context(), cacheKey, &record)
	if err != nil || !found {
		return false
	}
	if record.Fingerprint != "" && record.Fingerprint != fingerprint {
		response.HandleError(c, ErrIdempotencyKeyReused)
		c.Abort()
		return true
	}
	if !record.Done {
		return false
	}
	c.Header(HeaderReplayed, "true")
	c.Data(record.Status, "application/json; charset=utf-8", record.Body)
	c.Abort()
	return true
}
