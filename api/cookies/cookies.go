package cookies

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/angelmondragon/aquaflow-backend/internal/cart"
	"github.com/angelmondragon/aquaflow-backend/internal/consent"
	"github.com/angelmondragon/aquaflow-backend/pkg/config"
)

const (
	CartIDName  = "aq_cart_id"
	CartName    = "aq_cart"
	ConsentName = "aq_consent"

	cartIDTTL = 30 * 24 * time.Hour
)

// Codec signs (and optionally encrypts) the storefront cookies.
type Codec struct {
	sc  *securecookie.SecureCookie
	cfg config.CookieConfig
}

// NewCodec validates the key material and builds the codec.
func NewCodec(cfg config.CookieConfig) (*Codec, error) {
	hashKey := []byte(strings.TrimSpace(cfg.HashKey))
	if len(hashKey) < 32 {
		return nil, fmt.Errorf("cookie hash key must be at least 32 bytes")
	}
	var blockKey []byte
	if raw := strings.TrimSpace(cfg.BlockKey); raw != "" {
		blockKey = []byte(raw)
		switch len(blockKey) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("cookie block key must be 16, 24 or 32 bytes")
		}
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	if cfg.CartTTL <= 0 {
		cfg.CartTTL = 7 * 24 * time.Hour
	}
	if cfg.ConsentTTL <= 0 {
		cfg.ConsentTTL = 365 * 24 * time.Hour
	}
	return &Codec{sc: sc, cfg: cfg}, nil
}

// CartID returns the visitor's cart id, minting a new one when the cookie
// is missing or tampered with. The second value reports a fresh id.
func (c *Codec) CartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if c.read(r, CartIDName, &id) && isUUID(id) {
		return id, false
	}
	id = uuid.NewString()
	c.write(w, CartIDName, id, cartIDTTL)
	return id, true
}

// Consent returns the stored preferences or the undecided default.
func (c *Codec) Consent(r *http.Request) consent.Preferences {
	var prefs consent.Preferences
	if !c.read(r, ConsentName, &prefs) {
		return consent.Undecided()
	}
	return prefs
}

// SetConsent persists the visitor's choice.
func (c *Codec) SetConsent(w http.ResponseWriter, prefs consent.Preferences) {
	c.write(w, ConsentName, prefs, c.cfg.ConsentTTL)
}

// Mirror returns the cookie copy of the cart for this request.
func (c *Codec) Mirror(w http.ResponseWriter, r *http.Request, prefs consent.Preferences) cart.Mirror {
	return &cartMirror{codec: c, w: w, r: r, enabled: prefs.AllowsCartMirror()}
}

// ClearCart expires the mirrored cart regardless of consent.
func (c *Codec) ClearCart(w http.ResponseWriter) {
	c.expire(w, CartName)
}

func (c *Codec) read(r *http.Request, name string, dst any) bool {
	ck, err := r.Cookie(name)
	if err != nil || ck.Value == "" {
		return false
	}
	return c.sc.Decode(name, ck.Value, dst) == nil
}

func (c *Codec) encode(name string, value any) (string, error) {
	return c.sc.Encode(name, value)
}

func (c *Codec) write(w http.ResponseWriter, name string, value any, ttl time.Duration) error {
	encoded, err := c.encode(name, value)
	if err != nil {
		return err
	}
	http.SetCookie(w, c.cookie(name, encoded, ttl))
	return nil
}

func (c *Codec) expire(w http.ResponseWriter, name string) {
	ck := c.cookie(name, "", 0)
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	http.SetCookie(w, ck)
}

func (c *Codec) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   c.cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func isUUID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

type cartMirror struct {
	codec   *Codec
	w       http.ResponseWriter
	r       *http.Request
	enabled bool
}

func (m *cartMirror) Enabled() bool { return m.enabled }

func (m *cartMirror) Load() (*cart.Mirrored, bool) {
	if !m.enabled {
		return nil, false
	}
	var c cart.Mirrored
	if !m.codec.read(m.r, CartName, &c) {
		return nil, false
	}
	return &c, true
}

// Save fails when the encoded cart exceeds the browser cookie limit; the
// caller then clears the cookie and relies on the durable cart.
func (m *cartMirror) Save(c cart.Mirrored) error {
	if !m.enabled {
		return nil
	}
	return m.codec.write(m.w, CartName, c, m.codec.cfg.CartTTL)
}

func (m *cartMirror) Clear() {
	m.codec.expire(m.w, CartName)
}
