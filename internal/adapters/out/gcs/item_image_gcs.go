// internal/adapters/out/gcs/item_image_gcs.go
package gcs

import (
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// DefaultSignedURLTTL keeps catalog image links valid long enough for a
// browsing session without handing out long-lived URLs.
const DefaultSignedURLTTL = 1 * time.Hour

// ItemImageResolver turns stored image references into browser-usable URLs.
//
// Admin uploads store either a full https URL (external CDN) or a
// "gs://bucket/object" reference into item bannerImage/images; the latter is
// resolved into a V4 signed URL here. https URLs pass through untouched.
type ItemImageResolver struct {
	Client        *storage.Client
	DefaultBucket string
	TTL           time.Duration
}

func NewItemImageResolver(client *storage.Client, defaultBucket string) *ItemImageResolver {
	return &ItemImageResolver{
		Client:        client,
		DefaultBucket: strings.TrimSpace(defaultBucket),
		TTL:           DefaultSignedURLTTL,
	}
}

// Resolve maps one stored reference to a URL. Unresolvable references are
// returned as-is with the error; callers render what they got (an image that
// fails to load beats a broken listing).
func (r *ItemImageResolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", nil
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	if r == nil || r.Client == nil {
		return ref, errors.New("item_image_gcs: storage client is nil")
	}

	bucket, object := r.split(ref)
	if bucket == "" || object == "" {
		return ref, errors.New("item_image_gcs: cannot resolve reference: " + ref)
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}

	url, err := r.Client.Bucket(bucket).SignedURL(object, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return ref, err
	}
	return url, nil
}

// ResolveAll maps a slice, keeping order; per-ref failures degrade to the
// stored reference (skip and continue).
func (r *ItemImageResolver) ResolveAll(refs []string) []string {
	if len(refs) == 0 {
		return nil
	}
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, _ := r.Resolve(ref)
		if u != "" {
			out = append(out, u)
		}
	}
	return out
}

func (r *ItemImageResolver) split(ref string) (bucket, object string) {
	if strings.HasPrefix(ref, "gs://") {
		rest := strings.TrimPrefix(ref, "gs://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}
	// bare object path: use the configured bucket
	return r.DefaultBucket, strings.TrimPrefix(ref, "/")
}
