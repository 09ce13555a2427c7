// Package config assembles service settings from the environment, an
// optional .env file and an optional YAML overlay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"storefront-catalog/internal/catalogindex"
	"storefront-catalog/internal/pricing"
	"storefront-catalog/internal/relevance"
	"storefront-catalog/internal/vendor"
)

var validate = validator.New()

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Config holds everything the catalog commands need.
type Config struct {
	HTTPAddr string `validate:"required"`

	VendorBaseURL  string `validate:"required,url"`
	VendorUsername string
	VendorPassword string
	VendorCDNBase  string        `validate:"required,url"`
	ProbeStyleID   string        `validate:"required"`
	VendorTimeout  time.Duration `validate:"gt=0"`

	StyleIndexPath string `validate:"required"`
	SecondaryIndex string `validate:"required"`
	SecondaryCDN   string `validate:"required,url"`

	RedisAddr     string
	PriceCacheTTL time.Duration `validate:"gte=0"`
	KafkaBroker   string
	CORSOrigins   []string `validate:"min=1"`

	Markups      pricing.Markups
	Categories   relevance.CategoryRules
	TypePatterns map[string][]string `validate:"min=1"`
}

// fileOverlay is the shape of the optional YAML file.
type fileOverlay struct {
	Markups      pricing.Markups         `yaml:"markups"`
	Categories   relevance.CategoryRules `yaml:"categories"`
	TypePatterns map[string][]string     `yaml:"type_patterns"`
}

// LoadDotenv reads .env into the process environment outside production.
// Variables already set are kept.
func LoadDotenv() {
	if os.Getenv("ENV") == "production" {
		return
	}
	_ = godotenv.Load(".env")
}

// Load builds the configuration: built-in defaults, then the YAML file named
// by CATALOG_CONFIG, then individual environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:       getenv("CATALOG_HTTP_ADDR", ":8080"),
		VendorBaseURL:  getenv("VENDOR_BASE_URL", "https://api.ssactivewear.com"),
		VendorUsername: os.Getenv("VENDOR_USERNAME"),
		VendorPassword: os.Getenv("VENDOR_PASSWORD"),
		VendorCDNBase:  getenv("VENDOR_CDN_BASE", "https://cdn.ssactivewear.com/"),
		ProbeStyleID:   getenv("VENDOR_HEALTH_STYLE_ID", "39"),
		SecondaryCDN:   getenv("SECONDARY_CDN_BASE", "https://cdnm.sanmar.com/imglib/"),
		StyleIndexPath: getenv("STYLE_INDEX_PATH", "catalog-data/ss-style-index.json"),
		SecondaryIndex: getenv("SECONDARY_INDEX_PATH", "catalog-data/sanmar-index.json"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		KafkaBroker:    os.Getenv("KAFKA_BROKER"),
		CORSOrigins:    splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		Markups:        pricing.DefaultMarkups(),
		Categories:     relevance.DefaultCategoryRules(),
		TypePatterns:   relevance.DefaultTypePatterns,
	}

	var err error
	if cfg.VendorTimeout, err = time.ParseDuration(getenv("VENDOR_TIMEOUT", "8s")); err != nil {
		return nil, fmt.Errorf("invalid VENDOR_TIMEOUT: %w", err)
	}
	if cfg.PriceCacheTTL, err = time.ParseDuration(getenv("PRICE_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid PRICE_CACHE_TTL: %w", err)
	}

	if path := os.Getenv("CATALOG_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config %s: %w", path, err)
	}
	overlay := fileOverlay{Markups: c.Markups, Categories: c.Categories}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	c.Markups = overlay.Markups
	c.Categories = overlay.Categories
	if len(overlay.TypePatterns) > 0 {
		c.TypePatterns = overlay.TypePatterns
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	for key, dst := range map[string]*float64{
		"MARKUP_TEE":    &c.Markups.Tee,
		"MARKUP_HOODIE": &c.Markups.Hoodie,
	} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = f
	}
	if v := os.Getenv("CATEGORY_DEFAULT_ALLOW"); v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid CATEGORY_DEFAULT_ALLOW: %w", err)
		}
		c.Categories.DefaultAllow = b
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Vendor returns the vendor client settings.
func (c *Config) Vendor() vendor.Config {
	return vendor.Config{
		BaseURL:      c.VendorBaseURL,
		Username:     c.VendorUsername,
		Password:     c.VendorPassword,
		CDNBase:      c.VendorCDNBase,
		ProbeStyleID: c.ProbeStyleID,
		Timeout:      c.VendorTimeout,
	}
}

// IndexPaths maps each index source to its file.
func (c *Config) IndexPaths() map[catalogindex.Source]string {
	return map[catalogindex.Source]string{
		catalogindex.SourcePrimary:   c.StyleIndexPath,
		catalogindex.SourceSecondary: c.SecondaryIndex,
	}
}
