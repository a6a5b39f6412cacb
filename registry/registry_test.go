package registry

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientNoEndpoints(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestNewClientFromEnvUnset(t *testing.T) {
	t.Setenv("CERNO_REGISTRY_ENDPOINTS", "")

	client, err := NewClientFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewInstanceIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewInstanceID()
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate instance id %s", id)
		seen[id] = true
	}
}

func TestBuildKey(t *testing.T) {
	c := &Client{namespace: "cerno"}
	got := c.buildKey("coverage-server", "abc-123")
	assert.Equal(t, "/cerno/coverage-server/abc-123", got)
}

// writeSelfSignedCert writes a throwaway self-signed certificate and key
// into dir and returns their paths. The cert doubles as its own CA.
func writeSelfSignedCert(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "registry-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:                  true,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, "cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(certFile, certPEM, 0o600))

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyFile = filepath.Join(dir, "key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0o600))

	return certFile, keyFile
}

func TestTLSFromConfig(t *testing.T) {
	certFile, keyFile := writeSelfSignedCert(t, t.TempDir())

	t.Run("nil config", func(t *testing.T) {
		cfg, err := tlsFromConfig(nil)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("disabled", func(t *testing.T) {
		cfg, err := tlsFromConfig(&TLSConfig{Enabled: false, CertFile: certFile})
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("missing file settings", func(t *testing.T) {
		incomplete := []*TLSConfig{
			{Enabled: true, KeyFile: keyFile, CAFile: certFile},
			{Enabled: true, CertFile: certFile, CAFile: certFile},
			{Enabled: true, CertFile: certFile, KeyFile: keyFile},
		}
		for _, cfg := range incomplete {
			_, err := tlsFromConfig(cfg)
			assert.Error(t, err)
		}
	})

	t.Run("unreadable keypair", func(t *testing.T) {
		_, err := tlsFromConfig(&TLSConfig{
			Enabled:  true,
			CertFile: filepath.Join(t.TempDir(), "absent.pem"),
			KeyFile:  keyFile,
			CAFile:   certFile,
		})
		assert.Error(t, err)
	})

	t.Run("complete", func(t *testing.T) {
		cfg, err := tlsFromConfig(&TLSConfig{
			Enabled:  true,
			CertFile: certFile,
			KeyFile:  keyFile,
			CAFile:   certFile,
		})
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Len(t, cfg.Certificates, 1)
		assert.NotNil(t, cfg.RootCAs)
	})
}
