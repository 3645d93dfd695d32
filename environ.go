package chatmux

import "os"

// Environ is the key-value store the adapter publishes credentials through.
// It exists so the environment side effects stay testable without mutating
// the real process environment.
type Environ interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
}

// osEnviron is the process-environment implementation used by default.
type osEnviron struct{}

func (osEnviron) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (osEnviron) Setenv(key, value string) error      { return os.Setenv(key, value) }
