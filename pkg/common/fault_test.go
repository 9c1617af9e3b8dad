package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestFaultfCapturesCause(t *testing.T) {
	f := Faultf(FaultTransferFailed, "transfer broke at 42 bytes: %v", io.ErrUnexpectedEOF)
	if f.Kind != FaultTransferFailed {
		t.Errorf("Kind = %q, want %q", f.Kind, FaultTransferFailed)
	}
	if !errors.Is(f, io.ErrUnexpectedEOF) {
		t.Errorf("expected cause to be retained in the chain")
	}
	if f.Error() != "transfer broke at 42 bytes: unexpected EOF" {
		t.Errorf("unexpected message: %q", f.Error())
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	f := Faultf(FaultDecodeFailed, "xz stream is corrupt")
	wrapped := fmt.Errorf("normalize: %w", f)

	if got := KindOf(wrapped); got != FaultDecodeFailed {
		t.Errorf("KindOf(wrapped) = %q, want %q", got, FaultDecodeFailed)
	}
	if got := KindOf(errors.New("plain")); got != FaultNone {
		t.Errorf("KindOf(plain) = %q, want FaultNone", got)
	}
	if got := KindOf(nil); got != FaultNone {
		t.Errorf("KindOf(nil) = %q, want FaultNone", got)
	}
}

func TestAsFaultSurfacesOriginMessage(t *testing.T) {
	f := Faultf(FaultFetchRejected, "server answered 404 Not Found")
	wrapped := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", f))

	got := AsFault(wrapped)
	if got == nil {
		t.Fatal("AsFault returned nil for a wrapped fault")
	}
	if got.Error() != "server answered 404 Not Found" {
		t.Errorf("message gained wrapping context: %q", got.Error())
	}
}

func TestIsCancellation(t *testing.T) {
	if !IsCancellation(CancelledFault("download")) {
		t.Error("tagged cancellation not recognized")
	}
	if !IsCancellation(fmt.Errorf("op: %w", context.Canceled)) {
		t.Error("raw context.Canceled not recognized")
	}
	if IsCancellation(Faultf(FaultExecutionFailed, "exit status 7")) {
		t.Error("unrelated fault classified as cancellation")
	}
}

func TestHostArch(t *testing.T) {
	if a := HostArch(); a == ArchUnknown {
		t.Skipf("running on an architecture without a mapping: %s", a)
	}
}
