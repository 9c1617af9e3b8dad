package cli

import (
	"burrow/pkg/common"
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type mockHandler struct {
	err  error
	last *Invocation
}

func (m *mockHandler) Execute(ctx context.Context, inv *Invocation) (*common.ExecutionResult, error) {
	m.last = inv
	if m.err != nil {
		return nil, m.err
	}
	return &common.ExecutionResult{ExitCode: 0}, nil
}

func TestEngineErrorPropagation(t *testing.T) {
	dsl := `
cmd parent "Parent command"
cmd parent child "Child command"
    arg required string "Required argument"
`
	engine, err := NewEngine(dsl)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	engine.Register("parent/child", &mockHandler{
		err: fmt.Errorf("argument required is missing"),
	})

	_, err = engine.Run(context.Background(), []string{"parent", "child"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	if !strings.Contains(err.Error(), "argument required is missing") {
		t.Errorf("Expected error 'argument required is missing', got: %v", err)
	}
}

func TestEngineUnknownSubFallsBackToHelp(t *testing.T) {
	dsl := `
cmd parent "Parent command"
cmd parent child "Child command"
`
	engine, err := NewEngine(dsl)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res, err := engine.Run(context.Background(), []string{"parent", "unknown"})
	if err != nil {
		t.Fatalf("Expected nil error (help shown), got: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", res.ExitCode)
	}
}

func TestEngineParsesDefaultDSL(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("cli.def does not parse: %v", err)
	}

	for _, path := range []string{"run", "images", "images/add", "images/rm", "du", "clean", "version"} {
		words := strings.Split(path, "/")
		curr := engine.Commands
		var found *Command
		for _, w := range words {
			found = nil
			for _, c := range curr {
				if c.Name == w {
					found = c
					break
				}
			}
			if found == nil {
				t.Fatalf("command %s missing from cli.def", path)
			}
			curr = found.Subs
		}
	}
}

func TestParseRunFlagsAndRest(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"--verbose", "run", "-i", "ubuntu", "--", "sh", "-c", "id"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	if res.Help {
		t.Fatal("unexpected help")
	}
	inv := res.Invocation
	if inv.Command == nil || inv.Command.Name != "run" {
		t.Fatalf("resolved command = %+v", inv.Command)
	}
	if v, _ := inv.Global["verbose"].(bool); !v {
		t.Error("global verbose flag not set")
	}
	if inv.Flags["image"] != "ubuntu" {
		t.Errorf("image flag = %v", inv.Flags["image"])
	}
	if want := []string{"sh", "-c", "id"}; !reflect.DeepEqual(inv.Rest, want) {
		t.Errorf("rest = %v, want %v", inv.Rest, want)
	}
}

func TestParseRestKeepsFlagLikeWords(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"run", "--", "ls", "--verbose", "-h"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	if res.Help {
		t.Fatal("flag after -- was interpreted")
	}
	if want := []string{"ls", "--verbose", "-h"}; !reflect.DeepEqual(res.Invocation.Rest, want) {
		t.Errorf("rest = %v, want %v", res.Invocation.Rest, want)
	}
}

func TestParseSubcommandArgs(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"images", "add", "noble", "https://example.org/root.tar.xz", "--encoding", "tar.xz"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	inv := res.Invocation
	if got := getCmdPath(inv.Command); got != "images/add" {
		t.Fatalf("resolved %s", got)
	}
	if inv.Args["name"] != "noble" {
		t.Errorf("name arg = %q", inv.Args["name"])
	}
	if inv.Args["url"] != "https://example.org/root.tar.xz" {
		t.Errorf("url arg = %q", inv.Args["url"])
	}
	if inv.Flags["encoding"] != "tar.xz" {
		t.Errorf("encoding flag = %v", inv.Flags["encoding"])
	}
}

func TestParseParentFlagWithSubsPresent(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"images", "--pick"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	if res.Invocation.Command.Name != "images" {
		t.Fatalf("resolved %+v", res.Invocation.Command)
	}
	if v, _ := res.Invocation.Flags["pick"].(bool); !v {
		t.Error("pick flag not set")
	}
}

func TestParseMissingArgument(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"images", "rm"})
	if res.Error == nil || !strings.Contains(res.Error.Error(), "argument name is missing") {
		t.Errorf("error = %v", res.Error)
	}
}

func TestParseUnknownFlag(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"clean", "--force"})
	if res.Error == nil || !strings.Contains(res.Error.Error(), "unknown flag") {
		t.Errorf("error = %v", res.Error)
	}
}

func TestParsePrefixMatch(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"im"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	if res.Invocation.Command.Name != "images" {
		t.Errorf("prefix im resolved to %+v", res.Invocation.Command)
	}
}

func TestParseAmbiguousPrefix(t *testing.T) {
	dsl := `
cmd stat "Show one entry"
cmd status "Show everything"
`
	engine, err := NewEngine(dsl)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	res := engine.Parse([]string{"sta"})
	if res.Error == nil || !strings.Contains(res.Error.Error(), "ambiguous command") {
		t.Errorf("error = %v", res.Error)
	}

	// An exact name wins even where it is also a prefix of another command.
	res = engine.Parse([]string{"stat"})
	if res.Error != nil {
		t.Fatalf("Parse failed: %v", res.Error)
	}
	if res.Invocation.Command.Name != "stat" {
		t.Errorf("stat resolved to %+v", res.Invocation.Command)
	}
}

func TestEngineDispatch(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	h := &mockHandler{}
	engine.Register("du", h)

	res, err := engine.Run(context.Background(), []string{"du"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("exit code = %d", res.ExitCode)
	}
	if h.last == nil {
		t.Fatal("handler not invoked")
	}
}

func TestEngineNoHandler(t *testing.T) {
	engine, err := NewEngine(DefaultDSL)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	_, err = engine.Run(context.Background(), []string{"du"})
	if err == nil || !strings.Contains(err.Error(), "no handler registered") {
		t.Errorf("error = %v", err)
	}
}
