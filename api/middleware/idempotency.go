package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/aquaflow-backend/api/responses"
	pkgerrors "github.com/angelmondragon/aquaflow-backend/pkg/errors"
	"github.com/angelmondragon/aquaflow-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/aquaflow-backend/pkg/redis"
)

const (
	// CheckoutReplayTTL keeps placed-order responses replayable for a week.
	CheckoutReplayTTL = 7 * 24 * time.Hour
	// AcknowledgeReplayTTL covers wallet transfer acknowledgements.
	AcknowledgeReplayTTL = 24 * time.Hour

	idempotencyHeader = "Idempotency-Key"
	inFlightTTL       = 2 * time.Minute
)

// replayRecord is what lives under an idempotency key. A record without a
// status is an in-flight claim held by the request currently executing.
type replayRecord struct {
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

func (r replayRecord) inFlight() bool { return r.Status == 0 }

// Idempotency requires an Idempotency-Key header, replays the stored
// response for a repeated key and rejects a concurrent duplicate while the
// first request is still running. Only successful responses are kept so a
// failed submission can be retried under the same key.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}
			if len(clientKey) > 128 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			key := store.IdempotencyKey(buildScope(r), clientKey)

			claim, _ := json.Marshal(replayRecord{Fingerprint: fingerprint})
			claimed, err := store.SetNX(ctx, key, string(claim), inFlightTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
				return
			}
			if !claimed {
				replayExisting(ctx, store, key, fingerprint, w, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			completed := false
			defer func() {
				if completed {
					return
				}
				if delErr := store.Del(logg.Detached(ctx), key); delErr != nil {
					logg.Error(ctx, "release idempotency claim", delErr)
				}
			}()

			next.ServeHTTP(rec, r)

			status := rec.statusOrOK()
			if status >= http.StatusMultipleChoices {
				return
			}

			payload, err := json.Marshal(replayRecord{
				Fingerprint: fingerprint,
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				logg.Error(ctx, "encode idempotency record", err)
				return
			}
			storeCtx := logg.Detached(ctx)
			if err := store.Del(storeCtx, key); err != nil {
				logg.Error(ctx, "swap idempotency claim", err)
				return
			}
			if _, err := store.SetNX(storeCtx, key, string(payload), ttl); err != nil {
				logg.Error(ctx, "persist idempotency record", err)
				return
			}
			completed = true
		})
	}
}

func replayExisting(ctx context.Context, store pkgredis.IdempotencyStore, key, fingerprint string, w http.ResponseWriter, logg *logger.Logger) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		// the holder finished with a failure between our claim and this read
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request is still being processed, retry shortly"))
		return
	}
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read idempotency record"))
		return
	}

	var stored replayRecord
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return
	}
	if stored.Fingerprint != fingerprint {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return
	}
	if stored.inFlight() {
		responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConflict, "request is still being processed, retry shortly"))
		return
	}

	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

func buildScope(r *http.Request) string {
	return strings.Join([]string{
		CartIDFromContext(r.Context()),
		AdminFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}, "|")
}

func fingerprintBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	c.status = code
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
