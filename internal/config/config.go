package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cce/oncogen/internal/domain/codetables"
	"github.com/cce/oncogen/internal/platform/fhir"
	"github.com/cce/oncogen/internal/platform/output"
	"github.com/cce/oncogen/pkg/fhirmodels"
)

const dateLayout = "2006-01-02"

type Config struct {
	Port                 string        `mapstructure:"PORT"`
	Env                  string        `mapstructure:"ENV"`
	BaseURL              string        `mapstructure:"CCE_BASE_URL"`
	ExampleBaseURL       string        `mapstructure:"EXAMPLE_BASE_URL"`
	MinDate              string        `mapstructure:"MIN_DATE"`
	DeceasedOffsetMonths int           `mapstructure:"DECEASED_OFFSET_MONTHS"`
	Seed                 int64         `mapstructure:"SEED"`
	OutputMode           string        `mapstructure:"OUTPUT_MODE"`
	OutputDir            string        `mapstructure:"OUTPUT_DIR"`
	OutputFormat         string        `mapstructure:"OUTPUT_FORMAT"`
	APIURL               string        `mapstructure:"API_URL"`
	APITimeout           time.Duration `mapstructure:"API_TIMEOUT"`
	S3Bucket             string        `mapstructure:"S3_BUCKET"`
	S3Region             string        `mapstructure:"S3_REGION"`
	S3Endpoint           string        `mapstructure:"S3_ENDPOINT"`
	S3PathStyle          bool          `mapstructure:"S3_PATH_STYLE"`
	S3Prefix             string        `mapstructure:"S3_PREFIX"`
	RateLimitRPS         float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst       int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout       time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit            string        `mapstructure:"BODY_LIMIT"`
	BundleBodyLimit      string        `mapstructure:"BUNDLE_BODY_LIMIT"`
	HistorySize          int           `mapstructure:"HISTORY_SIZE"`
	MetricsEnabled       bool          `mapstructure:"METRICS_ENABLED"`
	CORSOrigins          []string      `mapstructure:"CORS_ORIGINS"`
}

var keys = []string{
	"PORT", "ENV", "CCE_BASE_URL", "EXAMPLE_BASE_URL", "MIN_DATE",
	"DECEASED_OFFSET_MONTHS", "SEED", "OUTPUT_MODE", "OUTPUT_DIR", "OUTPUT_FORMAT",
	"API_URL", "API_TIMEOUT", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
	"S3_PATH_STYLE", "S3_PREFIX", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"REQUEST_TIMEOUT", "BODY_LIMIT", "BUNDLE_BODY_LIMIT", "HISTORY_SIZE",
	"METRICS_ENABLED", "CORS_ORIGINS",
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CCE_BASE_URL", fhirmodels.DefaultBaseURL)
	v.SetDefault("EXAMPLE_BASE_URL", "") // derived from CCE_BASE_URL
	v.SetDefault("MIN_DATE", "1930-01-01")
	v.SetDefault("DECEASED_OFFSET_MONTHS", 600)
	v.SetDefault("SEED", 0)
	v.SetDefault("OUTPUT_MODE", string(output.ModeScreen))
	v.SetDefault("OUTPUT_DIR", output.DefaultDir)
	v.SetDefault("OUTPUT_FORMAT", string(fhir.FormatXML))
	v.SetDefault("API_TIMEOUT", output.DefaultTimeout)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("REQUEST_TIMEOUT", 30*time.Second)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("BUNDLE_BODY_LIMIT", "10M")
	v.SetDefault("HISTORY_SIZE", 100)
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Systems builds the base URLs every builder qualifies codes and entries with.
func (c *Config) Systems() codetables.Systems {
	return codetables.NewSystems(c.BaseURL, c.ExampleBaseURL)
}

// MinDateTime parses MIN_DATE.
func (c *Config) MinDateTime() (time.Time, error) {
	t, err := time.Parse(dateLayout, c.MinDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("MIN_DATE must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

// Format is the document encoding for generated output.
func (c *Config) Format() fhir.Format {
	f, ok := fhir.ParseFormat(c.OutputFormat)
	if !ok {
		return fhir.FormatXML
	}
	return f
}

// Output builds the sink settings.
func (c *Config) Output() output.Config {
	return output.Config{
		Dir:        c.OutputDir,
		APIURL:     c.APIURL,
		APITimeout: c.APITimeout,
		S3: output.S3Config{
			Bucket:    c.S3Bucket,
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			PathStyle: c.S3PathStyle,
			Prefix:    c.S3Prefix,
		},
	}
}

// Validate checks the configuration before any work starts. Only the
// settings of the selected output mode are required.
func (c *Config) Validate() error {
	earliest, err := c.MinDateTime()
	if err != nil {
		return err
	}
	if earliest.After(time.Now()) {
		return fmt.Errorf("MIN_DATE %s is in the future", c.MinDate)
	}
	if c.DeceasedOffsetMonths <= 0 {
		return fmt.Errorf("DECEASED_OFFSET_MONTHS must be positive, got %d", c.DeceasedOffsetMonths)
	}
	if err := absoluteURL("CCE_BASE_URL", c.BaseURL); err != nil {
		return err
	}
	if c.ExampleBaseURL != "" {
		if err := absoluteURL("EXAMPLE_BASE_URL", c.ExampleBaseURL); err != nil {
			return err
		}
	}
	if _, ok := fhir.ParseFormat(c.OutputFormat); !ok {
		return fmt.Errorf("OUTPUT_FORMAT must be \"xml\" or \"json\", got %q", c.OutputFormat)
	}

	mode, err := output.ParseMode(c.OutputMode)
	if err != nil {
		return err
	}
	switch mode {
	case output.ModeAPI:
		if err := absoluteURL("API_URL", c.APIURL); err != nil {
			return err
		}
	case output.ModeS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when OUTPUT_MODE is %q", mode)
		}
	}
	return nil
}

func absoluteURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.HasPrefix(u.Scheme, "http") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}
