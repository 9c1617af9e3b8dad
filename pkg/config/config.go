package config

import (
	"burrow/pkg/common"
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// DefaultBackend is the control binary used when BURROW_BACKEND is unset.
	DefaultBackend = "burrowd"
	// DefaultVersionHint is forwarded to the backend on registration unless
	// overridden on the command line. It is opaque to burrow itself.
	DefaultVersionHint = "2"
)

// ReadOnly defines the read-only interface for Config.
// Immutable
type ReadOnly interface {
	GetCacheDir() string
	GetConfigDir() string
	GetStateDir() string
	GetDownloadDir() string
	GetSandboxDir() string
	GetCatalogPath() string
	GetBackendCommand() string
	GetVersionHint() string
	GetArch() ArchType
	GetUser() string
	Freeze()
	Checkout() Writable
}

// Writable defines the writable interface for Config.
// Mutable
type Writable interface {
	ReadOnly
	SetCacheDir(string)
	SetConfigDir(string)
	SetStateDir(string)
	SetBackendCommand(string)
}

// Config holds the base directories and host info for burrow.
// Mutable
type Config struct {
	cacheDir  string
	configDir string
	stateDir  string

	downloadDir string
	sandboxDir  string
	catalogPath string

	backendCommand string
	versionHint    string

	arch ArchType
	user string

	frozen bool
	edited bool
}

var _ ReadOnly = (*Config)(nil)
var _ Writable = (*Config)(nil)

func (c *Config) GetCacheDir() string       { return c.cacheDir }
func (c *Config) GetConfigDir() string      { return c.configDir }
func (c *Config) GetStateDir() string       { return c.stateDir }
func (c *Config) GetDownloadDir() string    { return c.downloadDir }
func (c *Config) GetSandboxDir() string     { return c.sandboxDir }
func (c *Config) GetCatalogPath() string    { return c.catalogPath }
func (c *Config) GetBackendCommand() string { return c.backendCommand }
func (c *Config) GetVersionHint() string    { return c.versionHint }
func (c *Config) GetArch() ArchType         { return c.arch }
func (c *Config) GetUser() string           { return c.user }

func (c *Config) SetCacheDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.cacheDir = s
	c.updateDerived()
}

func (c *Config) SetConfigDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.configDir = s
	c.updateDerived()
}

func (c *Config) SetStateDir(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.stateDir = s
	c.updateDerived()
}

func (c *Config) SetBackendCommand(s string) {
	if c.frozen {
		panic("cannot modify frozen config")
	}
	c.backendCommand = s
}

func (c *Config) Freeze() {
	c.frozen = true
}

func (c *Config) Checkout() Writable {
	if c.frozen {
		panic("cannot checkout from frozen config")
	}
	if c.edited {
		panic("config already checked out")
	}
	c.edited = true
	return c
}

func (c *Config) updateDerived() {
	c.downloadDir = filepath.Join(c.cacheDir, "downloads")
	c.sandboxDir = filepath.Join(c.stateDir, "sandboxes")
	c.catalogPath = filepath.Join(c.configDir, "images.json")
}

// Init initializes the configuration using XDG base directories.
// The backend command defaults to DefaultBackend and can be overridden
// with the BURROW_BACKEND environment variable.
func Init() (ReadOnly, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	backend := os.Getenv("BURROW_BACKEND")
	if backend == "" {
		backend = DefaultBackend
	}

	c := &Config{
		cacheDir:       filepath.Join(xdg.CacheHome, "burrow"),
		configDir:      filepath.Join(xdg.ConfigHome, "burrow"),
		stateDir:       filepath.Join(xdg.StateHome, "burrow"),
		backendCommand: backend,
		versionHint:    DefaultVersionHint,
		arch:           common.HostArch(),
		user:           u.Username,
	}

	c.updateDerived()

	return c, nil
}
