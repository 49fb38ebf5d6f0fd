package storage

import (
	"context"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
	signer *gcsSigner
}

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Client provides an existing GCS client.
	Client *gcs.Client
	// CredentialsJSON is a service account key used for both the client and
	// URL signing when GoogleAccessID/PrivateKey are not set.
	CredentialsJSON []byte
	// ClientOptions are appended when a client is created.
	ClientOptions []option.ClientOption
	// GoogleAccessID is the service account access ID for signing.
	GoogleAccessID string
	// PrivateKey is the service account private key for signing.
	PrivateKey []byte
}

type gcsSigner struct {
	googleAccessID string
	privateKey     []byte
}

// NewGCS constructs a GCS adapter with optional signing support.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	signer, err := newGCSSigner(opts)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		clientOpts := append([]option.ClientOption{}, opts.ClientOptions...)
		if len(opts.CredentialsJSON) > 0 {
			creds, err := google.CredentialsFromJSON(ctx, opts.CredentialsJSON, gcs.ScopeReadOnly)
			if err != nil {
				return nil, err
			}
			clientOpts = append(clientOpts, option.WithCredentials(creds))
		}

		client, err = gcs.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &GCSAdapter{client: client, signer: signer}, nil
}

func newGCSSigner(opts GCSOptions) (*gcsSigner, error) {
	if opts.GoogleAccessID != "" && len(opts.PrivateKey) > 0 {
		return &gcsSigner{googleAccessID: opts.GoogleAccessID, privateKey: opts.PrivateKey}, nil
	}
	if len(opts.CredentialsJSON) == 0 {
		return nil, nil
	}

	cfg, err := google.JWTConfigFromJSON(opts.CredentialsJSON, gcs.ScopeReadOnly)
	if err != nil {
		return nil, err
	}
	return &gcsSigner{googleAccessID: cfg.Email, privateKey: cfg.PrivateKey}, nil
}

// StatObject returns metadata for a GCS object.
func (g *GCSAdapter) StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	attrs, err := g.client.Bucket(bucket).Object(key).Attrs(ctx)
	if err != nil {
		return ObjectInfo{}, err
	}

	return ObjectInfo{
		Bucket:      attrs.Bucket,
		Key:         attrs.Name,
		Size:        attrs.Size,
		ETag:        attrs.Etag,
		ContentType: attrs.ContentType,
		UpdatedAt:   attrs.Updated,
	}, nil
}

// PresignGet returns a V4 signed URL for downloading from GCS.
func (g *GCSAdapter) PresignGet(_ context.Context, bucket, key string, expiry time.Duration) (string, error) {
	if g.signer == nil {
		return "", ErrMissingSigner
	}
	if expiry <= 0 {
		return "", ErrInvalidExpiry
	}

	return gcs.SignedURL(bucket, key, &gcs.SignedURLOptions{
		Scheme:         gcs.SigningSchemeV4,
		Method:         http.MethodGet,
		// the library measures X-Goog-Expires from its own wall clock
		Expires:        time.Now().Add(expiry),
		GoogleAccessID: g.signer.googleAccessID,
		PrivateKey:     g.signer.privateKey,
	})
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
