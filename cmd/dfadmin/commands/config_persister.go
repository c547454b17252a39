package commands

import (
	"sync"
	"time"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateSessionToken stores a renewed session token for instance.
func (p *ConfigPersister) UpdateSessionToken(instance, token string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	inst, err := findInstance(config, instance)
	if err != nil {
		return err
	}

	inst.SessionToken = token
	inst.LastLogin = time.Now().UTC().Format(time.RFC3339)

	return saveConfigStruct(config)
}
