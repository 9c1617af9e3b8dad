// Package backend drives the external sandbox control binary (burrowd by
// default). Every lifecycle step is one process invocation whose exit
// status signals the outcome; status 0 means success. Registration and
// execution honor cancellation by terminating the child process, while
// release takes no context at all and always runs to natural completion.
package backend

import (
	"burrow/pkg/config"
	"context"
)

// Controller is the control surface of the sandbox backend.
type Controller interface {
	// Register installs the staged artifact as a sandbox rooted at
	// installPath. The version hint is forwarded verbatim.
	Register(ctx context.Context, identity, installPath, artifactPath, versionHint string) error

	// Execute runs command inside the registered sandbox with the caller's
	// stdio wired through.
	Execute(ctx context.Context, identity string, command []string) error

	// Release unregisters the sandbox. It cannot be cancelled.
	Release(identity string) error
}

// New creates a Controller for the configured backend command.
func New(cfg config.ReadOnly) Controller {
	return &facade{command: cfg.GetBackendCommand()}
}
