package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ServiceConfig holds common service configuration
type ServiceConfig struct {
	Port       int    `mapstructure:"port"`
	HealthPort int    `mapstructure:"health_port"`
	Host       string `mapstructure:"host"`
	LogLevel   string `mapstructure:"log_level"`
}

// Addr returns the service listen address
func (c ServiceConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HealthAddr returns the health check listen address
func (c ServiceConfig) HealthAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HealthPort)
}

// Registry modes
const (
	RegistryStatic  = "static"
	RegistryDynamic = "dynamic"
)

// Asset backends
const (
	BackendFile   = "file"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// AssetsConfig describes where documents live and how the registry is built
type AssetsConfig struct {
	Dir      string `mapstructure:"dir"`
	Suffix   string `mapstructure:"suffix"`
	Registry string `mapstructure:"registry"`
	Backend  string `mapstructure:"backend"`
	Watch    bool   `mapstructure:"watch"`
}

// DocumentConfig is one statically registered document
type DocumentConfig struct {
	Name   string   `mapstructure:"name"`
	ID     string   `mapstructure:"id"`
	Routes []string `mapstructure:"routes"`
}

// ModelsConfig holds classifier model configuration
type ModelsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

// StorageConfig holds S3-compatible object storage configuration
type StorageConfig struct {
	BucketHost  string `mapstructure:"bucket_host"`
	BucketPort  int    `mapstructure:"bucket_port"`
	BucketName  string `mapstructure:"bucket_name"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	InsecureTLS bool   `mapstructure:"insecure_tls"`
	Region      string `mapstructure:"region"`
}

// CommonConfig holds configuration common to all commands
type CommonConfig struct {
	Service   ServiceConfig    `mapstructure:"service"`
	Assets    AssetsConfig     `mapstructure:"assets"`
	Documents []DocumentConfig `mapstructure:"documents"`
	Models    ModelsConfig     `mapstructure:"models"`
	OTel      OTelConfig       `mapstructure:"otel"`
	Storage   StorageConfig    `mapstructure:"storage"`
}

// DefaultDocuments is the built-in page set, used when no documents are configured.
func DefaultDocuments() []DocumentConfig {
	return []DocumentConfig{
		{Name: "AI Novel Research", ID: "index.html", Routes: []string{"/", "/research"}},
		{Name: "Team Balancer", ID: "index2.html", Routes: []string{"/balancer"}},
		{Name: "Algorithm Performance", ID: "index3.html", Routes: []string{"/performance"}},
		{Name: "Project Plan", ID: "index4.html", Routes: []string{"/plan"}},
		{Name: "Shortest Path Report", ID: "index6.html"},
		{Name: "Shortest Path Report (Detail)", ID: "index7.html"},
	}
}

// InitViper initializes Viper with common settings
func InitViper(serviceName string) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(fmt.Sprintf("./%s", serviceName))
	v.AddConfigPath(fmt.Sprintf("/etc/%s/", serviceName))

	v.SetEnvPrefix("PAGE_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	return v
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.port", 8080)
	v.SetDefault("service.health_port", 8180)
	v.SetDefault("service.log_level", "info")

	// Relative asset and model dirs are anchored to the executable, not the cwd
	v.SetDefault("assets.dir", "htmls")
	v.SetDefault("assets.suffix", ".html")
	v.SetDefault("assets.registry", RegistryStatic)
	v.SetDefault("assets.backend", BackendFile)
	v.SetDefault("assets.watch", false)

	v.SetDefault("models.enabled", false)
	v.SetDefault("models.dir", "models")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.collector_endpoint", "")
	v.SetDefault("otel.sample_ratio", 1.0)

	v.SetDefault("storage.bucket_host", "localhost")
	v.SetDefault("storage.bucket_port", 9000)
	v.SetDefault("storage.bucket_name", "pages")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.insecure_tls", false)
	v.SetDefault("storage.region", "us-east-1")
}

// Load reads the configuration from file and environment
func Load(v *viper.Viper, cfg any) error {
	// Support standard PORT/HOST env vars used by container platforms
	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			v.Set("service.port", port)
		}
	}
	if host := os.Getenv("HOST"); host != "" {
		v.Set("service.host", host)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// Normalize fills in values that cannot be expressed as viper defaults and
// validates the enumerated settings.
func (c *CommonConfig) Normalize() error {
	if len(c.Documents) == 0 {
		c.Documents = DefaultDocuments()
	}
	switch c.Assets.Registry {
	case RegistryStatic, RegistryDynamic:
	default:
		return fmt.Errorf("unknown registry mode %q (want %s or %s)", c.Assets.Registry, RegistryStatic, RegistryDynamic)
	}
	switch c.Assets.Backend {
	case BackendFile, BackendS3, BackendMemory:
	default:
		return fmt.Errorf("unknown asset backend %q", c.Assets.Backend)
	}
	if c.Assets.Suffix == "" {
		c.Assets.Suffix = ".html"
	}
	return nil
}

// BindFlags binds common CLI flags to Viper
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.PersistentFlags().IntP("port", "p", 0, "Port to listen on")
	cmd.PersistentFlags().String("host", "", "Host to bind to")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("assets-dir", "", "Directory holding the HTML documents (relative paths resolve against the executable)")
	cmd.PersistentFlags().String("registry", "", "Registry mode (static, dynamic)")
	cmd.PersistentFlags().String("backend", "", "Asset backend (file, s3, memory)")
	cmd.PersistentFlags().Bool("otel-enabled", false, "Enable OpenTelemetry tracing")
	cmd.PersistentFlags().String("otel-collector-endpoint", "", "OpenTelemetry collector gRPC endpoint (e.g. localhost:4317)")

	v.BindPFlag("service.port", cmd.PersistentFlags().Lookup("port"))
	v.BindPFlag("service.host", cmd.PersistentFlags().Lookup("host"))
	v.BindPFlag("service.log_level", cmd.PersistentFlags().Lookup("log-level"))
	v.BindPFlag("assets.dir", cmd.PersistentFlags().Lookup("assets-dir"))
	v.BindPFlag("assets.registry", cmd.PersistentFlags().Lookup("registry"))
	v.BindPFlag("assets.backend", cmd.PersistentFlags().Lookup("backend"))
	v.BindPFlag("otel.enabled", cmd.PersistentFlags().Lookup("otel-enabled"))
	v.BindPFlag("otel.collector_endpoint", cmd.PersistentFlags().Lookup("otel-collector-endpoint"))
}

// LoadStorageConfigFromEnv loads storage configuration from OBC-style environment variables.
// BUCKET_HOST, BUCKET_PORT, BUCKET_NAME are set by OpenShift OBC ConfigMaps.
func LoadStorageConfigFromEnv(cfg *StorageConfig) {
	if host := os.Getenv("BUCKET_HOST"); host != "" {
		cfg.BucketHost = host
	}
	if portStr := os.Getenv("BUCKET_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			cfg.BucketPort = port
		}
	}
	if name := os.Getenv("BUCKET_NAME"); name != "" {
		cfg.BucketName = name
	}
	if region := os.Getenv("BUCKET_REGION"); region != "" {
		cfg.Region = region
	}

	// 443 means HTTPS unless BUCKET_SSL says otherwise
	if sslStr := os.Getenv("BUCKET_SSL"); sslStr != "" {
		cfg.UseSSL = sslStr == "true" || sslStr == "1"
	} else if cfg.BucketPort == 443 {
		cfg.UseSSL = true
	}

	// Internal *.svc services typically use self-signed certs
	if insecureStr := os.Getenv("BUCKET_INSECURE_TLS"); insecureStr != "" {
		cfg.InsecureTLS = insecureStr == "true" || insecureStr == "1"
	} else if strings.HasSuffix(cfg.BucketHost, ".svc") {
		cfg.InsecureTLS = true
	}
}
