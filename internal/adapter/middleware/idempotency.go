package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"

	// a claim left by a crashed handler expires after this
	claimTTL = 60 * time.Second
	// allowed client/server clock skew for X-Request-At
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// capture tees the response so it can be replayed.
type capture struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *capture) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
func (w *capture) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency makes a mutating route safe to retry. The first request with
// a given X-Request-Id claims a redis key scoped to route and caller; a
// retry with the same body gets the stored response, a retry with another
// body or one racing the first gets 409. X-Request-At must be within
// maxClockSkew of now. Responses >= 500 are dropped so clients can retry.
// It runs after Identity or ServiceToken so the caller is known.
func Idempotency(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	store := replayStore{rdb: rdb, ttl: ttl}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, reqAt, err := requestStamp(req.Header, nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}
			who := caller(c)
			if who == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}

			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
				}
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := buildKey(req.Method, c.Path(), who, reqID)
			log := logrus.WithContext(req.Context()).WithFields(logrus.Fields{"key": key, "caller": who})
			ctx, cancel := context.WithTimeout(context.WithoutCancel(req.Context()), storeTimeout)
			defer cancel()

			pending := replayEntry{
				Pending:   true,
				BodyHash:  bodyHash(body),
				RequestID: reqID,
				RequestAt: reqAt.UnixMilli(),
				Caller:    who,
				StoredAt:  nowUTC(),
			}
			claimed, err := store.claim(ctx, key, pending)
			if err != nil {
				log.WithError(err).Warn("idempotency store unavailable")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !claimed {
				return replay(c, store, ctx, key, pending.BodyHash, log)
			}

			w := &capture{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = w
			if err := next(c); err != nil {
				c.Error(err)
			}

			if w.status >= http.StatusInternalServerError {
				if err := store.release(ctx, key); err != nil {
					log.WithError(err).Warn("idempotency claim not released")
				}
				return nil
			}
			done := pending
			done.Pending = false
			done.Status = w.status
			done.ContentType = w.Header().Get(echo.HeaderContentType)
			done.Body = w.buf.Bytes()
			done.StoredAt = nowUTC()
			if err := store.finish(ctx, key, done); err != nil {
				log.WithError(err).Warn("idempotency result not stored")
			}
			return nil
		}
	}
}

// requestStamp validates X-Request-Id and X-Request-At.
func requestStamp(h http.Header, now time.Time) (string, time.Time, error) {
	reqID := strings.ToLower(strings.TrimSpace(h.Get(HeaderRequestID)))
	if reqID == "" {
		return "", time.Time{}, errMissing(HeaderRequestID)
	}
	if !validReqID(reqID) {
		return "", time.Time{}, errInvalid(HeaderRequestID + " format")
	}
	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return "", time.Time{}, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return "", time.Time{}, errInvalid(HeaderRequestAt + ": too skewed")
	}
	return reqID, at, nil
}

func replay(c echo.Context, store replayStore, ctx context.Context, key, hash string, log *logrus.Entry) error {
	prev, err := store.load(ctx, key)
	if err != nil {
		log.WithError(err).Warn("idempotency entry not loaded")
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	}
	if prev.BodyHash != hash {
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	}
	if prev.Pending || prev.Status == 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
	}
	ct := prev.ContentType
	if ct == "" {
		ct = echo.MIMEApplicationJSONCharsetUTF8
	}
	c.Response().Header().Set("Idempotent-Replayed", "true")
	return c.Blob(prev.Status, ct, prev.Body)
}
