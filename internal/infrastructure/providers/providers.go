package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/openscholar/paperview/client"
	"github.com/openscholar/paperview/internal/config"
	"github.com/openscholar/paperview/internal/infrastructure/chain"
	"github.com/openscholar/paperview/internal/infrastructure/database"
	"github.com/openscholar/paperview/internal/infrastructure/gateway"
	"github.com/openscholar/paperview/internal/infrastructure/repository"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the snapshot models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewRedis creates the pub/sub client for invalidation signals.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
}

// NewMemcache creates the shared metadata-document cache client, or nil
// when not configured.
func NewMemcache(conf config.Server) *memcache.Client {
	if conf.MemcachedAddr == "" {
		return nil
	}
	return database.NewMemcached(conf.MemcachedAddr)
}

// NewEthClient dials the configured RPC endpoint.
func NewEthClient(conf config.Server) (*ethclient.Client, error) {
	return chain.Dial(conf.RpcURL)
}

// NewChainReader binds the contract read surfaces.
func NewChainReader(eth *ethclient.Client, conf config.Config) (*chain.Reader, error) {
	return chain.NewReader(eth, chain.AddressesFromConfig(conf.Contracts), conf.DomainTuning().Paging)
}

// NewGatewayClient constructs the HTTP client for the content gateway.
func NewGatewayClient(conf config.Server) *client.Client {
	return client.New(conf.GatewayURL)
}

// NewMetadataGateway constructs the metadata resolver backed by the
// gateway client and the shared cache.
func NewMetadataGateway(cl *client.Client, mc *memcache.Client) *gateway.MetadataGateway {
	return gateway.NewMetadataGateway(cl, mc)
}

// NewSnapshotRepository constructs the read-model persistence.
func NewSnapshotRepository(db *gorm.DB) *repository.SnapshotRepository {
	return repository.NewSnapshotRepository(db)
}
