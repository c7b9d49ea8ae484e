package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/stretchr/testify/require"
)

const (
	testProjectID = "shareplate-test"
	testKeyID     = "test-kid"
	testSecret    = "test-jwt-secret-that-is-32-chars-long"
)

// certServer serves a single self-signed certificate in the securetoken format.
type certServer struct {
	*httptest.Server
	key     *rsa.PrivateKey
	fetches atomic.Int32

	// When set, each fetch signals arrived and blocks until release closes.
	arrived chan struct{}
	release chan struct{}
}

func newCertServer(t *testing.T, cacheControl string) *certServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{
		testKeyID: string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})),
	})
	require.NoError(t, err)

	cs := &certServer{key: key}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.fetches.Add(1)
		if cs.release != nil {
			cs.arrived <- struct{}{}
			<-cs.release
		}
		if cacheControl != "" {
			w.Header().Set("Cache-Control", cacheControl)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func firebaseConfig(certsURL string) config.AuthConfig {
	return config.AuthConfig{
		Provider:          "firebase",
		FirebaseProjectID: testProjectID,
		CertsURL:          certsURL,
	}
}

// validFirebaseClaims returns claims that pass every check.
func validFirebaseClaims() *identityClaims {
	now := time.Now()
	return &identityClaims{
		Email:         "donor@example.com",
		EmailVerified: true,
		Name:          "Dana Donor",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    firebaseIssuerPrefix + testProjectID,
			Audience:  jwt.ClaimStrings{testProjectID},
			Subject:   "firebase-uid-1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func signRS256(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}
