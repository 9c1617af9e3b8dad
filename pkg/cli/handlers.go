package cli

import (
	"burrow/pkg/common"
	"burrow/pkg/config"
	"burrow/pkg/disk"
	"burrow/pkg/display"
	"burrow/pkg/image"
	"burrow/pkg/sandbox"
	"context"
	"fmt"
	"os"
)

// Managers carries the wired subsystems the handlers dispatch into.
type Managers struct {
	Disp       display.Display
	SysCfg     config.ReadOnly
	ImageMgr   image.Manager
	SandboxMgr sandbox.Manager
	DiskMgr    disk.Manager
}

// handlerFunc adapts a function to the Handler interface.
type handlerFunc func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error)

func (f handlerFunc) Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	return f(ctx, inv)
}

// RegisterAll binds every command path to its implementation.
func RegisterAll(e *Engine, m *Managers) {
	e.Register("run", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runSandbox(ctx, m, runParamsFrom(inv))
	}))
	e.Register("images", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runImages(ctx, m, imagesParamsFrom(inv))
	}))
	e.Register("images/add", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runImagesAdd(ctx, m, imagesAddParamsFrom(inv))
	}))
	e.Register("images/rm", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runImagesRm(ctx, m, imagesRmParamsFrom(inv))
	}))
	e.Register("du", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runDu(ctx, m)
	}))
	e.Register("clean", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runClean(ctx, m, cleanParamsFrom(inv))
	}))
	e.Register("version", handlerFunc(func(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
		return runVersion(ctx, m)
	}))
}

// emit retires the live display and prints structured output on standard
// out, where scripts expect it.
func emit(m *Managers, out *common.Output) {
	m.Disp.Close()
	display.NewWriterDisplay(os.Stdout).RenderOutput(out)
}

func runSandbox(ctx context.Context, m *Managers, params *RunParams) (*common.ExecutionResult, error) {
	if len(params.Command) == 0 {
		return nil, fmt.Errorf("no command given; put it after --")
	}
	return m.SandboxMgr.Run(ctx, &sandbox.RunSpec{
		Image:       params.Image,
		VersionHint: params.BackendVersion,
		Command:     params.Command,
	})
}

func runImages(ctx context.Context, m *Managers, params *ImagesParams) (*common.ExecutionResult, error) {
	entries, err := m.ImageMgr.List()
	if err != nil {
		return nil, err
	}
	if params.Pick {
		return runImagePick(m, entries)
	}

	table := &common.Table{Header: []string{"NAME", "ORIGIN", "ENCODING", "SOURCE"}}
	for _, e := range entries {
		src := e.URL
		if e.Discover != nil {
			src = e.Discover.Index + " (discovered)"
		}
		table.Rows = append(table.Rows, []string{e.Name, e.Origin, e.Encoding.String(), src})
	}
	emit(m, &common.Output{Table: table})
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func runImagePick(m *Managers, entries []image.Entry) (*common.ExecutionResult, error) {
	m.Disp.Close()
	name, err := pickImage(entries)
	if err != nil {
		return nil, err
	}
	if name == "" {
		// Backing out of the picker is not an error, but scripts need
		// to see the difference.
		return &common.ExecutionResult{ExitCode: 1}, nil
	}
	fmt.Println(name)
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func runImagesAdd(ctx context.Context, m *Managers, params *ImagesAddParams) (*common.ExecutionResult, error) {
	encName := params.Encoding
	if encName == "" {
		encName = "tar.gz"
	}
	enc, err := image.ParseEncoding(encName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q (want tar, tar.gz, tar.xz or tar.zst)", params.Encoding)
	}

	if err := m.ImageMgr.Add(image.Entry{Name: params.Name, URL: params.URL, Encoding: enc}); err != nil {
		return nil, err
	}
	emit(m, &common.Output{Message: fmt.Sprintf("Added %s (%s)", params.Name, enc)})
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func runImagesRm(ctx context.Context, m *Managers, params *ImagesRmParams) (*common.ExecutionResult, error) {
	if err := m.ImageMgr.Remove(params.Name); err != nil {
		return nil, err
	}
	emit(m, &common.Output{Message: fmt.Sprintf("Removed %s", params.Name)})
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func runDu(ctx context.Context, m *Managers) (*common.ExecutionResult, error) {
	res, err := m.DiskMgr.Report()
	if err != nil {
		return nil, err
	}
	emit(m, res.Output)
	return res, nil
}

func runClean(ctx context.Context, m *Managers, params *CleanParams) (*common.ExecutionResult, error) {
	res, err := m.DiskMgr.Clean(params.DryRun)
	if err != nil {
		return nil, err
	}
	emit(m, res.Output)
	return res, nil
}

func runVersion(ctx context.Context, m *Managers) (*common.ExecutionResult, error) {
	fmt.Println(config.GetBuildInfo())
	return &common.ExecutionResult{ExitCode: 0}, nil
}
