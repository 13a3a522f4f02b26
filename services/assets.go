package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cinderellaapi/models"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	gocache_store "github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

// Generated avatars never change after they are written, so cached upstream
// bytes can live for a long while.
const avatarCacheExpiration = 30 * time.Minute

var suffixLetters = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

func randomSuffix(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = suffixLetters[rand.Intn(len(suffixLetters))]
	}
	return string(b)
}

// AssetStoreProvider persists generated avatar images and serves them back.
type AssetStoreProvider interface {
	Save(variant string, data []byte) (models.GeneratedAsset, string, error)
	Read(id string) ([]byte, error)
	Exists(id string) bool
}

// LocalAssetStore writes avatars into a flat directory. Files are write-once:
// every save mints a fresh name, nothing is ever overwritten or deleted.
type LocalAssetStore struct {
	Dir string
}

func NewLocalAssetStore(dir string) (*LocalAssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar dir: %v", err)
	}
	return &LocalAssetStore{Dir: dir}, nil
}

func (s *LocalAssetStore) Save(variant string, data []byte) (models.GeneratedAsset, string, error) {
	if variant == "" {
		variant = "canonical"
	}
	id := fmt.Sprintf("avatar-%d-%s-%s.png", time.Now().UnixMilli(), variant, randomSuffix(6))
	if err := os.WriteFile(filepath.Join(s.Dir, id), data, 0o644); err != nil {
		return models.GeneratedAsset{}, "", fmt.Errorf("failed to write avatar file: %v", err)
	}
	asset := models.GeneratedAsset{ID: id, Variant: variant, MimeType: "image/png", Data: data}
	return asset, "/avatars/" + id, nil
}

func (s *LocalAssetStore) Read(id string) ([]byte, error) {
	clean := filepath.Base(id)
	return os.ReadFile(filepath.Join(s.Dir, clean))
}

func (s *LocalAssetStore) Exists(id string) bool {
	clean := filepath.Base(id)
	_, err := os.Stat(filepath.Join(s.Dir, clean))
	return err == nil
}

// AvatarResolver turns whatever avatar reference the client sends (data URI,
// local /avatars path, absolute URL) into raw base64 for the model calls.
// Upstream fetches go through a loadable ristretto cache since the same
// avatar gets re-sent on every try-on in a session.
type AvatarResolver struct {
	store       AssetStoreProvider
	upstreamURL string
	cache       *cache.LoadableCache[string]
}

func NewAvatarResolver(store AssetStoreProvider, upstreamURL string) (*AvatarResolver, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 26, // 64MB of cached avatar bytes
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (string, []gocache_store.Option, error) {
		url, ok := key.(string)
		if !ok {
			return "", nil, fmt.Errorf("invalid key type provided to avatar cache: expected string, got %T", key)
		}
		log.Printf("CACHE MISS for avatar: %s. Fetching from upstream.", url)
		data, err := ReadFileFromUrl(url)
		if err != nil {
			return "", nil, err
		}
		return base64.StdEncoding.EncodeToString(data), []gocache_store.Option{gocache_store.WithExpiration(avatarCacheExpiration)}, nil
	}

	loadableCache := cache.NewLoadable[string](
		loadFunction,
		cache.New[string](ristrettoStore),
	)
	return &AvatarResolver{
		store:       store,
		upstreamURL: strings.TrimRight(upstreamURL, "/"),
		cache:       loadableCache,
	}, nil
}

// ResolveBase64 returns the bare base64 payload for a client avatar
// reference, or "" when the reference is empty or unresolvable. Resolution
// failures are soft: the try-on continues without the avatar.
func (r *AvatarResolver) ResolveBase64(ctx context.Context, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "data:") {
		return StripDataURIPrefix(ref)
	}
	if strings.HasPrefix(ref, "/avatars/") {
		id := strings.TrimPrefix(ref, "/avatars/")
		if data, err := r.store.Read(id); err == nil {
			return base64.StdEncoding.EncodeToString(data)
		}
		// Not on disk locally, fall through to the upstream copy.
		ref = r.upstreamURL + "/avatars/" + id
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return ""
	}
	encoded, err := r.cache.Get(ctx, ref)
	if err != nil {
		fmt.Println("[Avatar] Failed to resolve avatar reference:", err)
		return ""
	}
	return encoded
}
