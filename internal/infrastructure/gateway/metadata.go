package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/client"
	"github.com/openscholar/paperview/internal/domain"
)

var tracer = otel.Tracer("gateway")

// Documents are immutable by content hash, so the shared cache can hold
// them for a long time.
const documentCacheSeconds = 3600

// MetadataGateway resolves paper metadata documents from the
// content-addressable store. One fetch attempt per call; retry policy is
// the cache orchestrator's job. Resolved documents also land in a shared
// memcached layer keyed by content hash, since they never change.
type MetadataGateway struct {
	client *client.Client
	mc     *memcache.Client
}

// NewMetadataGateway constructs the gateway. mc may be nil when no shared
// cache is configured.
func NewMetadataGateway(cl *client.Client, mc *memcache.Client) *MetadataGateway {
	return &MetadataGateway{
		client: cl,
		mc:     mc,
	}
}

// cacheKey hashes the content hash into a short memcached-safe key.
func cacheKey(contentHash string) string {
	return fmt.Sprintf("md:%016x", xxh3.HashString(contentHash))
}

// Resolve fetches the metadata document for a content hash. Returns
// (nil, nil) when the document does not exist or cannot be parsed — the
// paper renders with placeholders in that case. Transient gateway
// failures return an error for the orchestrator to retry.
func (g *MetadataGateway) Resolve(ctx context.Context, contentHash string) (*paperview.PaperMetadata, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Metadata.Resolve")
	defer span.End()

	if contentHash == "" {
		return nil, nil
	}

	if g.mc != nil {
		item, err := g.mc.Get(cacheKey(contentHash))
		if err == nil {
			var doc paperview.PaperMetadata
			if json.Unmarshal(item.Value, &doc) == nil {
				return &doc, nil
			}
		}
	}

	var doc paperview.PaperMetadata
	err := g.client.FetchJSON(ctx, contentHash, &doc)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, errors.Wrap(err, "MetadataGateway.Resolve: fetch failed")
	}

	if g.mc != nil {
		raw, err := json.Marshal(doc)
		if err == nil {
			err = g.mc.Set(&memcache.Item{
				Key:        cacheKey(contentHash),
				Value:      raw,
				Expiration: documentCacheSeconds,
			})
			if err != nil {
				slog.Debug("memcached set failed", slog.String("error", err.Error()))
			}
		}
	}

	return &doc, nil
}
