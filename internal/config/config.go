package config

import (
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Engine      EngineConfig
	Sources     SourcesConfig
	Cache       CacheConfig
	ObjectStore ObjectStoreConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// EngineConfig carries the allocation policy knobs. These are consumed,
// never computed, by the engine.
type EngineConfig struct {
	AllocationRatio     float64
	TargetStockDays     int
	RecallThresholdDays int
	ClosedRemark        string
	TopN                int

	// FallbackLocations is the per-channel ordered candidate list used
	// for cold-start direct/seller location assignment.
	FallbackLocations map[string][]string
}

// SourcesConfig holds the URIs of the four tabular extracts. http(s)
// URIs are fetched directly, s3:// URIs through the object store.
type SourcesConfig struct {
	Sales          string
	LocationStock  string
	PoolStock      string
	StyleRemarks   string
	TimeoutSeconds int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	SummaryTTLSeconds int
}

type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})

		viper.SetDefault("ALLOCATION_RATIO", 0.40)
		viper.SetDefault("TARGET_STOCK_DAYS", 45)
		viper.SetDefault("RECALL_THRESHOLD_DAYS", 60)
		viper.SetDefault("CLOSED_REMARK", "Closed")
		viper.SetDefault("SUMMARY_TOP_N", 10)
		viper.SetDefault("FALLBACK_LOCATIONS", "")

		viper.SetDefault("SOURCE_SALES_URL", "")
		viper.SetDefault("SOURCE_LOCATION_STOCK_URL", "")
		viper.SetDefault("SOURCE_POOL_STOCK_URL", "")
		viper.SetDefault("SOURCE_STYLE_REMARKS_URL", "")
		viper.SetDefault("SOURCE_TIMEOUT_SECONDS", 60)

		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_SUMMARY_TTL_SECONDS", 300)

		viper.SetDefault("OBJECT_STORE_ENDPOINT", "")
		viper.SetDefault("OBJECT_STORE_ACCESS_KEY", "")
		viper.SetDefault("OBJECT_STORE_SECRET_KEY", "")
		viper.SetDefault("OBJECT_STORE_USE_SSL", true)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Engine: EngineConfig{
				AllocationRatio:     viper.GetFloat64("ALLOCATION_RATIO"),
				TargetStockDays:     viper.GetInt("TARGET_STOCK_DAYS"),
				RecallThresholdDays: viper.GetInt("RECALL_THRESHOLD_DAYS"),
				ClosedRemark:        viper.GetString("CLOSED_REMARK"),
				TopN:                viper.GetInt("SUMMARY_TOP_N"),
				FallbackLocations:   ParseFallbackLocations(viper.GetString("FALLBACK_LOCATIONS")),
			},
			Sources: SourcesConfig{
				Sales:          viper.GetString("SOURCE_SALES_URL"),
				LocationStock:  viper.GetString("SOURCE_LOCATION_STOCK_URL"),
				PoolStock:      viper.GetString("SOURCE_POOL_STOCK_URL"),
				StyleRemarks:   viper.GetString("SOURCE_STYLE_REMARKS_URL"),
				TimeoutSeconds: viper.GetInt("SOURCE_TIMEOUT_SECONDS"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				SummaryTTLSeconds: viper.GetInt("CACHE_SUMMARY_TTL_SECONDS"),
			},
			ObjectStore: ObjectStoreConfig{
				Endpoint:  viper.GetString("OBJECT_STORE_ENDPOINT"),
				AccessKey: viper.GetString("OBJECT_STORE_ACCESS_KEY"),
				SecretKey: viper.GetString("OBJECT_STORE_SECRET_KEY"),
				UseSSL:    viper.GetBool("OBJECT_STORE_USE_SSL"),
			},
		}
	})

	return instance
}

// ParseFallbackLocations parses the FALLBACK_LOCATIONS value, e.g.
// "DIRECT:BOM-01|DEL-02,MARKETA:BOM-01" into an ordered per-channel
// candidate list. Order within a channel is preserved; it is the
// cold-start priority order.
func ParseFallbackLocations(raw string) map[string][]string {
	out := make(map[string][]string)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		channel := strings.ToUpper(strings.TrimSpace(parts[0]))
		if channel == "" {
			continue
		}
		var locations []string
		for _, loc := range strings.Split(parts[1], "|") {
			loc = strings.TrimSpace(loc)
			if loc != "" {
				locations = append(locations, loc)
			}
		}
		if len(locations) > 0 {
			out[channel] = locations
		}
	}
	return out
}
