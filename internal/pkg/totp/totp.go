// Package totp implements RFC 6238 time-based one-time passwords: secret
// generation, otpauth provisioning URIs, and code validation with a bounded
// clock-skew window. Secrets are handled as RFC 4648 base32 without padding,
// the encoding authenticator apps expect.
package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const secretLen = 20 // bytes of entropy per RFC 4226 recommendation

// b32 is the unpadded encoding used for stored and transmitted secrets.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Params are the algorithm parameters shared between enrollment and
// verification. The zero value is usable; defaults match what authenticator
// apps assume (SHA1, 6 digits, 30-second steps, one step of skew).
type Params struct {
	Period int // seconds per time step
	Digits int
	Window int // accepted steps of clock skew in either direction
}

func (p Params) withDefaults() Params {
	if p.Period <= 0 {
		p.Period = 30
	}
	if p.Digits <= 0 {
		p.Digits = 6
	}
	if p.Window <= 0 {
		p.Window = 1
	}
	return p
}

// NewSecret generates a cryptographically random shared secret,
// base32-encoded without padding.
func NewSecret() (string, error) {
	b := make([]byte, secretLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate totp secret: %w", err)
	}
	return b32.EncodeToString(b), nil
}

// KeyURI builds the otpauth:// provisioning URI for the given secret,
// account label and issuer, suitable for QR encoding.
func KeyURI(secret, account, issuer string, p Params) string {
	p = p.withDefaults()
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", fmt.Sprintf("%d", p.Digits))
	v.Set("period", fmt.Sprintf("%d", p.Period))
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// CodeAt computes the code for the time step containing t.
func CodeAt(secret string, t time.Time, p Params) (string, error) {
	p = p.withDefaults()
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := uint64(t.Unix() / int64(p.Period))
	return hotp(key, counter, p.Digits), nil
}

// Validate reports whether code matches the secret at any counter within
// [now-window, now+window]. A malformed code is a plain mismatch; an
// undecodable secret is an error, since it means stored state is broken.
// Which offset matched is deliberately not reported.
func Validate(code, secret string, t time.Time, p Params) (bool, error) {
	p = p.withDefaults()
	key, err := decodeSecret(secret)
	if err != nil {
		return false, err
	}
	code = strings.TrimSpace(code)
	if len(code) != p.Digits || !allDigits(code) {
		return false, nil
	}
	counter := t.Unix() / int64(p.Period)
	ok := false
	for c := counter - int64(p.Window); c <= counter+int64(p.Window); c++ {
		if c < 0 {
			continue
		}
		want := hotp(key, uint64(c), p.Digits)
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			ok = true
		}
	}
	return ok, nil
}

// hotp implements RFC 4226: HMAC-SHA1 over the big-endian counter,
// dynamic truncation, 31-bit mask, reduced modulo 10^digits.
func hotp(key []byte, counter uint64, digits int) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)
	mac := hmac.New(sha1.New, key)
	mac.Write(buf[:])
	sum := mac.Sum(nil)
	offset := sum[len(sum)-1] & 0x0f
	v := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	mod := uint32(1)
	for i := 0; i < digits; i++ {
		mod *= 10
	}
	return fmt.Sprintf("%0*d", digits, v%mod)
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secret), "="))
	key, err := b32.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode totp secret: %w", err)
	}
	return key, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
