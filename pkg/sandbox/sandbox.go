// Package sandbox sequences the life of an ephemeral sandbox: resolve the
// image reference, fetch its stream into staging, normalize the staging
// file to a tar, register it with the backend, execute the user's command,
// and tear everything down again. Teardown runs on every exit path, takes
// no context, and its failures are warnings that never replace the run's
// primary result.
package sandbox

import (
	"burrow/pkg/backend"
	"burrow/pkg/common"
	"burrow/pkg/config"
	"burrow/pkg/display"
	"burrow/pkg/fetch"
	"burrow/pkg/image"
	"burrow/pkg/namegen"
	"burrow/pkg/normalize"
	"context"
	"log/slog"
	"os"
	"path/filepath"
)

// RunSpec describes a single sandbox run.
// Immutable
type RunSpec struct {
	// Image is the image reference. Empty selects the default image.
	Image string
	// VersionHint overrides the configured hint forwarded to the backend.
	VersionHint string
	// Command is the argv executed inside the sandbox.
	Command []string
}

type manager struct {
	Config  config.ReadOnly
	Disp    display.Display
	Images  image.Manager
	Backend backend.Controller
}

// Manager is a pointer to the internal manager implementation.
type Manager = *manager

// NewManager creates a sandbox Manager wired to the configured backend.
func NewManager(cfg config.ReadOnly, disp display.Display, images image.Manager) Manager {
	return &manager{
		Config:  cfg,
		Disp:    disp,
		Images:  images,
		Backend: backend.New(cfg),
	}
}

// run carries the state of one sandbox lifetime. The two staging paths and
// the registered flag are exactly what teardown has to undo.
// Mutable
type run struct {
	identity     string
	artifactPath string
	tarPath      string
	installPath  string
	registered   bool
}

// Run provisions a fresh sandbox, executes spec.Command inside it and
// reports the outcome. Whatever the run acquired is released before Run
// returns, whichever way it ended.
func (m *manager) Run(ctx context.Context, spec *RunSpec) (*common.ExecutionResult, error) {
	r := &run{identity: namegen.New()}
	r.artifactPath = filepath.Join(m.Config.GetDownloadDir(), r.identity+".rootfs")
	r.installPath = filepath.Join(m.Config.GetSandboxDir(), r.identity)

	slog.Info("Starting sandbox run", "identity", r.identity, "image", spec.Image)
	defer m.teardown(r)

	if err := m.provision(ctx, spec, r); err != nil {
		return nil, err
	}

	if err := m.Backend.Execute(ctx, r.identity, spec.Command); err != nil {
		return nil, err
	}

	slog.Info("Sandbox run complete", "identity", r.identity)
	return &common.ExecutionResult{ExitCode: 0}, nil
}

// provision walks the acquisition states in order: resolve, fetch,
// normalize, register. When it returns nil the sandbox is registered and
// ready to execute; when it returns an error, whatever was acquired up to
// that point is left for teardown.
func (m *manager) provision(ctx context.Context, spec *RunSpec, r *run) error {
	task := m.Disp.StartTask(r.identity)
	defer task.Done()

	ref := spec.Image
	if ref == "" {
		ref = image.DefaultImage
	}

	task.SetStage("Resolve", ref)
	desc, err := m.Images.Resolve(ctx, spec.Image)
	if err != nil {
		return err
	}
	slog.Info("Resolved image", "name", desc.Name, "source", desc.Source, "encoding", desc.Encoding)

	task.SetStage("Fetch", desc.Name)
	stream, total, err := m.Images.Open(ctx, desc)
	if err != nil {
		return err
	}
	_, ferr := fetch.ToFile(ctx, r.artifactPath, stream, total, task)
	stream.Close()
	if ferr != nil {
		return ferr
	}

	task.SetStage("Normalize", filepath.Base(r.artifactPath))
	r.tarPath, err = normalize.Normalize(ctx, r.artifactPath, desc.Encoding, task)
	if err != nil {
		return err
	}

	task.SetStage("Register", r.identity)
	hint := spec.VersionHint
	if hint == "" {
		hint = m.Config.GetVersionHint()
	}
	if err := m.Backend.Register(ctx, r.identity, r.installPath, r.tarPath, hint); err != nil {
		return err
	}
	r.registered = true
	return nil
}

// teardown releases the sandbox registration if one was made and removes
// both staging files if present. It is not cancellable and never returns
// an error; failures are logged as warnings.
func (m *manager) teardown(r *run) {
	slog.Info("Tearing down sandbox", "identity", r.identity)

	if r.registered {
		if err := m.Backend.Release(r.identity); err != nil {
			slog.Warn("Sandbox release failed", "identity", r.identity, "error", err)
		}
	}

	removeStaging(r.artifactPath)

	// A decode that failed partway through leaves its output behind without
	// reporting the path back; derive it so teardown still collects it.
	tar := r.tarPath
	if tar == "" {
		tar = normalize.TarPath(r.artifactPath)
	}
	if tar != r.artifactPath {
		removeStaging(tar)
	}
}

func removeStaging(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not remove staging file", "path", path, "error", err)
	}
}
