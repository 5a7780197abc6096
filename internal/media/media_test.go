package media

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"findhome/internal/config"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/listings/", "Front Door.JPG")
	if !strings.HasPrefix(key, "listings/") {
		t.Errorf("expected listings/ prefix, got %s", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Errorf("expected lowercased extension, got %s", key)
	}
	if ObjectKey("listings", "a.png") == ObjectKey("listings", "a.png") {
		t.Error("expected unique keys for the same filename")
	}
	if key := ObjectKey("listings", "noext"); strings.Contains(key[len("listings/"):], ".") {
		t.Errorf("expected no extension, got %s", key)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("http://media.local/")
	ctx := context.Background()

	obj, err := store.Put(ctx, Upload{Filename: "room.png", Body: strings.NewReader("png")})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if obj.URL != "http://media.local/"+obj.Key {
		t.Errorf("unexpected url %s", obj.URL)
	}
	if !store.Has(obj.Key) || store.Len() != 1 {
		t.Fatal("expected object to be stored")
	}

	if err := store.Delete(ctx, obj.Key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Has(obj.Key) {
		t.Error("expected object to be removed")
	}
}

func TestDisabledRejectsUploads(t *testing.T) {
	_, err := Disabled{}.Put(context.Background(), Upload{Filename: "a.jpg", Body: strings.NewReader("x")})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("expected ErrDisabled, got %v", err)
	}
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	if _, err := NewS3Store(context.Background(), config.MediaConfig{Region: "us-east-1"}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestNewS3StorePublicURL(t *testing.T) {
	store, err := NewS3Store(context.Background(), config.MediaConfig{
		Bucket:         "photos",
		Endpoint:       "minio:9000",
		Region:         "us-east-1",
		AccessKey:      "key",
		SecretKey:      "secret",
		ForcePathStyle: true,
	})
	if err != nil {
		t.Fatalf("NewS3Store failed: %v", err)
	}
	if store.publicURL != "https://minio:9000/photos" {
		t.Errorf("unexpected public url %s", store.publicURL)
	}
}

func writeCABundle(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "findhome test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600); err != nil {
		t.Fatalf("failed to write bundle: %v", err)
	}
	return path
}

func TestNewS3StoreWithCABundle(t *testing.T) {
	t.Setenv("AWS_CA_BUNDLE", writeCABundle(t))

	store, err := NewS3Store(context.Background(), config.MediaConfig{
		Bucket:    "photos",
		Endpoint:  "https://minio.internal:9000",
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Store failed with a custom CA bundle: %v", err)
	}
	if store.publicURL != "https://minio.internal:9000/photos" {
		t.Errorf("unexpected public url %s", store.publicURL)
	}
}
