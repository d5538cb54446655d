package user

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	salt       = []byte("rota.core.user.token_gen")
	b32NoPad   = base32.StdEncoding.WithPadding(base32.NoPadding)
	refDay2001 = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// tokenGenerator makes & verifies password reset tokens.
// A token is "<base32(days since 2001)>-<hmac>"; it is invalidated by any password change or login.
type tokenGenerator struct {
	key     []byte
	timeout time.Duration
	now     func() time.Time // mockable
}

func newTokenGenerator(secretKey string, timeout time.Duration) *tokenGenerator {
	key := sha256.Sum256(append(append([]byte{}, salt...), secretKey...))
	return &tokenGenerator{key: key[:], timeout: timeout, now: time.Now}
}

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

func (gen *tokenGenerator) makeToken(usr User) string {
	return gen.makeTokenWithTimestamp(usr, numDaysSince2001(gen.now()))
}

func (gen *tokenGenerator) verifyToken(usr User, token string) error {
	parts := strings.SplitN(token, "-", 2)
	if token == "" || len(parts) < 2 {
		return ErrInvalidToken
	}

	data, err := b32NoPad.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(gen.makeTokenWithTimestamp(usr, ts)), []byte(token)) == 0 {
		return ErrInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(gen.now()) - ts) > int(gen.timeout/(24*time.Hour)) {
		return ErrTokenExpired
	}
	return nil
}

func (gen *tokenGenerator) makeTokenWithTimestamp(usr User, ts int) string {
	tsB32 := b32NoPad.EncodeToString([]byte(strconv.Itoa(ts)))
	h := hmac.New(sha256.New, gen.key)
	h.Write(hashValue(usr, ts))
	return fmt.Sprintf("%s-%s", tsB32, base64.RawURLEncoding.EncodeToString(h.Sum(nil)))
}

func numDaysSince2001(t time.Time) int {
	return int(math.Ceil(t.Sub(refDay2001).Hours() / 24))
}

func hashValue(usr User, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(usr.ID)
	val.Write(usr.PasswordHash)
	if !usr.LastLogin.IsZero() {
		val.WriteString(usr.LastLogin.UTC().Format(time.RFC3339Nano))
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
