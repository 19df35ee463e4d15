package password

import "fmt"

// Algorithm represents supported password digest algorithms.
type Algorithm string

const (
	// AlgorithmSHA1 is a SHA-1 digest (default). The login backend stores
	// lowercase hex SHA-1 password digests.
	AlgorithmSHA1 Algorithm = "sha1"

	// AlgorithmSHA256 is a SHA-256 digest.
	AlgorithmSHA256 Algorithm = "sha256"

	// AlgorithmSHA512 is a SHA-512 digest.
	AlgorithmSHA512 Algorithm = "sha512"

	// AlgorithmBlake2b is a 256-bit BLAKE2b digest.
	AlgorithmBlake2b Algorithm = "blake2b"
)

// Encoding selects how the digest bytes are rendered.
type Encoding string

const (
	// EncodingHex renders lowercase hexadecimal (default).
	EncodingHex Encoding = "hex"
	// EncodingBase64 renders standard padded base64.
	EncodingBase64 Encoding = "base64"
)

// Config configures password hashing behavior.
// Loadable from YAML/env via mapstructure tags.
type Config struct {
	// Algorithm selects the digest algorithm (default: "sha1").
	Algorithm Algorithm `yaml:"algorithm" mapstructure:"algorithm"`

	// Encoding selects the output encoding (default: "hex").
	Encoding Encoding `yaml:"encoding" mapstructure:"encoding"`

	// Pepper is a fixed string prepended to the password before hashing.
	// It must match whatever the server applied when storing the hash.
	Pepper string `yaml:"pepper" mapstructure:"pepper"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmSHA1
	}
	if c.Encoding == "" {
		c.Encoding = EncodingHex
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512, AlgorithmBlake2b:
	default:
		return fmt.Errorf("unsupported algorithm: %s (use sha1, sha256, sha512 or blake2b)", c.Algorithm)
	}
	switch c.Encoding {
	case EncodingHex, EncodingBase64:
	default:
		return fmt.Errorf("unsupported encoding: %s (use hex or base64)", c.Encoding)
	}
	return nil
}

// NewHasher creates a Hasher from configuration.
func NewHasher(cfg Config) (Hasher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &DigestHasher{algorithm: cfg.Algorithm, encoding: cfg.Encoding, pepper: cfg.Pepper}, nil
}
