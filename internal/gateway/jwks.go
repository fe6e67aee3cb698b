package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwksCacheTTL bounds how long a fetched key set is reused; after it, the
// next Get refetches the set before answering, matching spec.md §4.6's "cache TTL is
// provider-bounded" requirement with a fixed, conservative default.
const jwksCacheTTL = 10 * time.Minute

type jwksKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
	Use string `json:"use"`
	Alg string `json:"alg"`
}

type jwksDocument struct {
	Keys []jwksKey `json:"keys"`
}

type cachedKeySet struct {
	fetchedAt time.Time
	keys      map[string]jwksKey
}

// KeyCache fetches and caches a provider's JWKS document, keyed by issuer
// (spec.md §4.6: "cached in a process-local key/value store keyed by
// issuer"). Safe for concurrent use.
type KeyCache struct {
	mu     sync.Mutex
	cache  map[string]*cachedKeySet
	client *http.Client
}

func NewKeyCache() *KeyCache {
	return &KeyCache{
		cache:  make(map[string]*cachedKeySet),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get returns the key matching kid for issuer, fetching or refreshing the
// JWKS document as needed.
func (k *KeyCache) Get(ctx context.Context, issuer, kid string) (jwksKey, error) {
	set := k.getCached(issuer)
	if set != nil {
		if key, ok := set.keys[kid]; ok {
			return key, nil
		}
	}
	// Cache miss or unknown kid: refresh once before giving up, matching
	// spec.md §4.6's "signature failures trigger a single refresh before
	// rejecting".
	fresh, err := k.fetch(ctx, issuer)
	if err != nil {
		return jwksKey{}, err
	}
	k.setCached(issuer, fresh)
	key, ok := fresh.keys[kid]
	if !ok {
		return jwksKey{}, fmt.Errorf("no matching key for kid %q", kid)
	}
	return key, nil
}

func (k *KeyCache) getCached(issuer string) *cachedKeySet {
	k.mu.Lock()
	defer k.mu.Unlock()
	set, ok := k.cache[issuer]
	if !ok || time.Since(set.fetchedAt) > jwksCacheTTL {
		return nil
	}
	return set
}

func (k *KeyCache) setCached(issuer string, set *cachedKeySet) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.cache[issuer] = set
}

func (k *KeyCache) fetch(ctx context.Context, issuer string) (*cachedKeySet, error) {
	url := issuer + "/.well-known/jwks.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS fetch from %s returned status %d", url, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS document: %w", err)
	}

	keys := make(map[string]jwksKey, len(doc.Keys))
	for _, key := range doc.Keys {
		keys[key.Kid] = key
	}
	return &cachedKeySet{fetchedAt: time.Now(), keys: keys}, nil
}

// jwksKeyFunc adapts a KeyCache into a jwt.Keyfunc for a fixed issuer.
func jwksKeyFunc(ctx context.Context, cache *KeyCache, issuer string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("token header missing kid")
		}
		key, err := cache.Get(ctx, issuer, kid)
		if err != nil {
			return nil, err
		}
		return rsaPublicKeyFromJWK(key)
	}
}
