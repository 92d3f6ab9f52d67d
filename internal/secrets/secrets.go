package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-secretsmanager-caching-go/v2/secretcache"
)

// secretGetter is the subset of secretcache.Cache used here.
type secretGetter interface {
	GetSecretString(secretID string) (string, error)
}

// Manager wraps the Secrets Manager cache client.
type Manager struct {
	cache secretGetter
}

// NewManager creates a new Secrets Manager cache.
func NewManager() (*Manager, error) {
	cache, err := secretcache.New()
	if err != nil {
		return nil, err
	}
	return &Manager{cache: cache}, nil
}

// GetSecretString retrieves a secret value from Secrets Manager.
func (m *Manager) GetSecretString(secretName string) (string, error) {
	if secretName == "" {
		return "", fmt.Errorf("secret name is required")
	}
	value, err := m.cache.GetSecretString(secretName)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// LoadSecretFromFile reads a secret value from a local file.
func LoadSecretFromFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// ResolveBackendToken picks the backend bearer token. An explicit token wins,
// then a Secrets Manager secret, then a local file. An empty result with a
// nil error means the backend is called anonymously.
func ResolveBackendToken(token, secretName, filePath string) (string, error) {
	return resolve(token, secretName, filePath, func() (secretGetter, error) {
		manager, err := NewManager()
		if err != nil {
			return nil, err
		}
		return manager, nil
	})
}

func resolve(token, secretName, filePath string, manager func() (secretGetter, error)) (string, error) {
	if token = strings.TrimSpace(token); token != "" {
		return token, nil
	}
	if secretName != "" {
		m, err := manager()
		if err != nil {
			return "", fmt.Errorf("creating secrets manager cache: %w", err)
		}
		value, err := m.GetSecretString(secretName)
		if err != nil {
			return "", fmt.Errorf("reading secret %s: %w", secretName, err)
		}
		return strings.TrimSpace(value), nil
	}
	if filePath != "" {
		return LoadSecretFromFile(filePath)
	}
	return "", nil
}
