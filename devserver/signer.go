package devserver

import (
	"crypto/hmac"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	stowry "github.com/sagarc03/stowry-go"
)

const (
	// MaxExpiresSeconds caps the lifetime of a signed URL.
	MaxExpiresSeconds = 604800 // 7 days
	// DefaultSignedURLExpiry is used when a Signer has no Expires set.
	DefaultSignedURLExpiry = 15 * time.Minute
)

// Signer issues and checks the signed URLs that grant access to one blob
// without a bearer token.
type Signer struct {
	AccessKey string
	SecretKey string
	// BaseURL is prefixed to signed paths, e.g. "http://localhost:8000".
	BaseURL string
	Expires time.Duration

	now func() time.Time
}

// NewSigner creates a Signer for the given key pair and public base URL.
func NewSigner(accessKey, secretKey, baseURL string, expires time.Duration) *Signer {
	if expires <= 0 {
		expires = DefaultSignedURLExpiry
	}
	return &Signer{
		AccessKey: accessKey,
		SecretKey: secretKey,
		BaseURL:   strings.TrimSuffix(baseURL, "/"),
		Expires:   expires,
		now:       time.Now,
	}
}

// Presign returns an absolute URL for method on path.
func (s *Signer) Presign(method, path string) string {
	timestamp := s.now().Unix()
	expires := int64(s.Expires / time.Second)
	sig := stowry.Sign(s.SecretKey, method, path, timestamp, expires)

	query := url.Values{}
	query.Set(stowry.StowryCredentialParam, s.AccessKey)
	query.Set(stowry.StowryDateParam, strconv.FormatInt(timestamp, 10))
	query.Set(stowry.StowryExpiresParam, strconv.FormatInt(expires, 10))
	query.Set(stowry.StowrySignatureParam, sig)

	return s.BaseURL + path + "?" + query.Encode()
}

// Verify checks a signed request. Errors wrap ErrUnauthorized.
func (s *Signer) Verify(method, path string, query url.Values) error {
	credential := query.Get(stowry.StowryCredentialParam)
	dateStr := query.Get(stowry.StowryDateParam)
	expiresStr := query.Get(stowry.StowryExpiresParam)
	signature := query.Get(stowry.StowrySignatureParam)

	if credential == "" || dateStr == "" || expiresStr == "" || signature == "" {
		return fmt.Errorf("missing required signature parameters: %w", ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(dateStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid date: %w", ErrUnauthorized)
	}

	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires <= 0 || expires > MaxExpiresSeconds {
		return fmt.Errorf("invalid expires: %w", ErrUnauthorized)
	}

	if s.now().Unix() > timestamp+expires {
		return fmt.Errorf("signature expired: %w", ErrUnauthorized)
	}

	if credential != s.AccessKey {
		return fmt.Errorf("access key not found: %w", ErrUnauthorized)
	}

	expected := stowry.Sign(s.SecretKey, method, path, timestamp, expires)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch: %w", ErrUnauthorized)
	}

	return nil
}
