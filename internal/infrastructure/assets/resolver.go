package assets

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/inkline-team/inkline/internal/domain/entities"
)

// maxResolveRetries bounds how often a flaky object store is retried before
// an asset is skipped
const maxResolveRetries = 3

// ObjectStore is the subset of the storage client the resolver needs
type ObjectStore interface {
	StatObject(ctx context.Context, objectName string) (int64, error)
	GetFileURL(ctx context.Context, objectName string) (string, error)
}

// Resolver turns stored object keys and manifest asset ids into renderable
// URLs. Transient store errors are retried with exponential backoff; an
// asset that still fails is skipped rather than failing the whole scene.
type Resolver struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewResolver creates an asset resolver
func NewResolver(store ObjectStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger,
	}
}

// ResolveURL resolves a single object key to a presigned URL, verifying the
// object exists first
func (r *Resolver) ResolveURL(ctx context.Context, objectKey string) (string, error) {
	operation := func() error {
		_, err := r.store.StatObject(ctx, objectKey)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxResolveRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", fmt.Errorf("object %q not available: %w", objectKey, err)
	}

	url, err := r.store.GetFileURL(ctx, objectKey)
	if err != nil {
		return "", fmt.Errorf("failed to resolve URL for %q: %w", objectKey, err)
	}
	return url, nil
}

// ObjectKeyForAsset maps a manifest asset id to its object key
func ObjectKeyForAsset(assetID string) string {
	return "assets/" + assetID + ".png"
}

// ResolveScene resolves every asset a scene references. Assets that cannot
// be resolved are logged and omitted from the result so one broken asset
// does not take the scene down with it.
func (r *Resolver) ResolveScene(ctx context.Context, scene *entities.Scene) map[string]string {
	resolved := make(map[string]string, len(scene.Events))
	for _, event := range scene.Events {
		if _, ok := resolved[event.AssetID]; ok {
			continue
		}
		url, err := r.ResolveURL(ctx, ObjectKeyForAsset(event.AssetID))
		if err != nil {
			r.logger.Warn("skipping unresolvable asset",
				zap.String("scene_id", scene.SceneID),
				zap.String("asset_id", event.AssetID),
				zap.Error(err))
			continue
		}
		resolved[event.AssetID] = url
	}
	return resolved
}
