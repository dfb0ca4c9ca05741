package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/openscholar/paperview/internal/domain"
)

type Config struct {
	Server    Server     `yaml:"server"`
	Contracts Contracts  `yaml:"contracts"`
	Tuning    TuningFile `yaml:"tuning"`

	tuning domain.Tuning
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	RpcURL        string `yaml:"rpcURL"`
	GatewayURL    string `yaml:"gatewayURL"` // content-addressable store base, e.g. https://ipfs.example/ipfs/
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type Contracts struct {
	PaperRegistry    string `yaml:"paperRegistry"`
	VerifierRegistry string `yaml:"verifierRegistry"`
	Governance       string `yaml:"governance"`
	Stablecoin       string `yaml:"stablecoin"`
}

// TuningFile is the on-disk shape of the runtime knobs. Durations are
// plain integers (seconds / milliseconds) because the yaml decoder does
// not understand duration strings. Zero values fall back to defaults.
type TuningFile struct {
	ShortWindowSec  int `yaml:"shortWindowSec"`
	MediumWindowSec int `yaml:"mediumWindowSec"`
	LongWindowSec   int `yaml:"longWindowSec"`
	RetryAttempts   int `yaml:"retryAttempts"`
	RetryBaseMs     int `yaml:"retryBaseMs"`
	RetryMaxMs      int `yaml:"retryMaxMs"`

	PageSize     int   `yaml:"pageSize"`
	ChunkSize    int   `yaml:"chunkSize"`
	ChunkDelayMs int   `yaml:"chunkDelayMs"`
	ScanCeiling  int64 `yaml:"scanCeiling"`

	Rewards []domain.RewardBand `yaml:"rewards"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8000"
	}

	config.tuning = config.Tuning.merge(domain.DefaultTuning())

	return config, nil
}

// DomainTuning returns the merged runtime knob set.
func (c Config) DomainTuning() domain.Tuning {
	return c.tuning
}

func (t TuningFile) merge(def domain.Tuning) domain.Tuning {
	out := def

	if t.ShortWindowSec > 0 {
		out.Cache.ShortWindow = time.Duration(t.ShortWindowSec) * time.Second
	}
	if t.MediumWindowSec > 0 {
		out.Cache.MediumWindow = time.Duration(t.MediumWindowSec) * time.Second
	}
	if t.LongWindowSec > 0 {
		out.Cache.LongWindow = time.Duration(t.LongWindowSec) * time.Second
	}
	if t.RetryAttempts > 0 {
		out.Cache.RetryAttempts = t.RetryAttempts
	}
	if t.RetryBaseMs > 0 {
		out.Cache.RetryBase = time.Duration(t.RetryBaseMs) * time.Millisecond
	}
	if t.RetryMaxMs > 0 {
		out.Cache.RetryMax = time.Duration(t.RetryMaxMs) * time.Millisecond
	}
	if t.PageSize > 0 {
		out.Paging.PageSize = t.PageSize
	}
	if t.ChunkSize > 0 {
		out.Paging.ChunkSize = t.ChunkSize
	}
	if t.ChunkDelayMs > 0 {
		out.Paging.ChunkDelay = time.Duration(t.ChunkDelayMs) * time.Millisecond
	}
	if t.ScanCeiling > 0 {
		out.Paging.ScanCeiling = t.ScanCeiling
	}
	if len(t.Rewards) > 0 {
		out.Rewards = t.Rewards
	}

	return out
}
