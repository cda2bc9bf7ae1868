package cloudstack

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lestrrat-go/cloudstack/signer"
)

const defaultTimeout = 30 * time.Second

// Config is everything the client needs. It is passed explicitly; there is
// no process wide default configuration.
type Config struct {
	// URL is the API endpoint, e.g. "https://cloud.example.com/client/api".
	URL string `yaml:"url" mapstructure:"url" validate:"required,url"`

	APIKey    string `yaml:"api_key" mapstructure:"api_key" validate:"required"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key" validate:"required"`

	// AllowEmptyStringParams sends parameters whose value is "" instead of
	// dropping them.
	AllowEmptyStringParams bool `yaml:"allow_empty_string_params" mapstructure:"allow_empty_string_params"`

	// Algorithm is the signature algorithm. Defaults to hmac-sha1.
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm" validate:"omitempty,oneof=hmac-sha1 hmac-sha256 hmac-sha512"`

	// SignatureTTL, when positive, signs requests with signature version 3
	// and an expiry this far in the future.
	SignatureTTL time.Duration `yaml:"signature_ttl" mapstructure:"signature_ttl" validate:"gte=0"`

	// Timeout applies to the default HTTP connection. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// Middlewares are composed around the adapter in order, outermost first.
	Middlewares []Middleware `yaml:"-" mapstructure:"-" validate:"-"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = string(signer.Default)
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks c. Failures are ErrConfiguration errors.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return configurationError(PhaseBuild, err)
	}
	return nil
}
