package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Credential keys shared by the environment and credential files.
const (
	KeyURI      = "NEO4J_URI"
	KeyUsername = "NEO4J_USERNAME"
	KeyPassword = "NEO4J_PASSWORD"
)

var (
	// ErrMissingCredential indicates a required credential key is absent.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInsecureURI indicates the graph URI does not use an encrypted scheme.
	ErrInsecureURI = errors.New("graph URI must use an encrypted scheme")
)

// encryptedSchemes lists the Neo4j URI schemes that imply TLS. It accepts
// every secure scheme, a superset of the neo4j+ssc:// prefix credentials
// files were first written against.
var encryptedSchemes = []string{"neo4j+s://", "neo4j+ssc://", "bolt+s://", "bolt+ssc://"}

// Credentials holds the static connection secrets for the graph database.
type Credentials struct {
	URI      string
	Username string
	Password string
}

// Validate checks that all keys are present and the URI is encrypted.
func (c Credentials) Validate() error {
	switch {
	case c.URI == "":
		return fmt.Errorf("%w: %s", ErrMissingCredential, KeyURI)
	case c.Username == "":
		return fmt.Errorf("%w: %s", ErrMissingCredential, KeyUsername)
	case c.Password == "":
		return fmt.Errorf("%w: %s", ErrMissingCredential, KeyPassword)
	}
	if !IsEncryptedURI(c.URI) {
		return fmt.Errorf("%w: %q", ErrInsecureURI, redactURI(c.URI))
	}
	return nil
}

// IsEncryptedURI reports whether uri starts with a TLS scheme.
func IsEncryptedURI(uri string) bool {
	lower := strings.ToLower(uri)
	for _, scheme := range encryptedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

func redactURI(uri string) string {
	if at := strings.LastIndex(uri, "@"); at >= 0 {
		if sep := strings.Index(uri, "://"); sep >= 0 && sep < at {
			return uri[:sep+3] + "***" + uri[at:]
		}
	}
	return uri
}

// Source resolves credentials at startup.
type Source interface {
	Credentials() (Credentials, error)
}

// EnvSource reads credentials from NEO4J_* environment variables.
type EnvSource struct{}

// Credentials implements Source.
func (EnvSource) Credentials() (Credentials, error) {
	return Credentials{
		URI:      os.Getenv(KeyURI),
		Username: os.Getenv(KeyUsername),
		Password: os.Getenv(KeyPassword),
	}, nil
}

// FileSource reads credentials from a JSON or YAML file holding the NEO4J_*
// keys at the top level.
type FileSource struct {
	Path string
}

// Credentials implements Source.
func (s FileSource) Credentials() (Credentials, error) {
	v := viper.New()
	v.SetConfigFile(s.Path)
	if filepath.Ext(s.Path) == "" {
		v.SetConfigType("json")
	}
	if err := v.ReadInConfig(); err != nil {
		return Credentials{}, fmt.Errorf("read credentials file %s: %w", s.Path, err)
	}
	return Credentials{
		URI:      v.GetString(KeyURI),
		Username: v.GetString(KeyUsername),
		Password: v.GetString(KeyPassword),
	}, nil
}

// StaticSource returns fixed credentials. Useful for injection in tests and
// embedding callers.
type StaticSource Credentials

// Credentials implements Source.
func (s StaticSource) Credentials() (Credentials, error) {
	return Credentials(s), nil
}

// Resolve loads credentials from src and validates them.
func Resolve(src Source) (Credentials, error) {
	creds, err := src.Credentials()
	if err != nil {
		return Credentials{}, err
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
