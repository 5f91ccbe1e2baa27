package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestNewProviderHandsOutModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := p.GetLogger("translatable.declare")
	if logger == nil {
		t.Fatal("expected logger, got nil")
	}
	logger.Debug("binding.declared", "attribute", "title")

	var nilProvider *Provider
	nilProvider.GetLogger("translatable").Info("dropped")
}

func TestAdapterForwardsCallsAndClonesFields(t *testing.T) {
	stub := &stubLogger{}
	adapted := adapt(stub)

	adapted.Trace("t")
	adapted.Debug("d")
	adapted.Info("i")
	adapted.Warn("w")
	adapted.Error("e")
	adapted.Fatal("f")

	fields := map[string]any{"attribute": "title"}
	if child := adapted.(*adapter).WithFields(fields); child == nil {
		t.Fatal("expected WithFields to return a logger")
	}
	fields["attribute"] = "key"
	if len(stub.fields) != 1 || stub.fields[0]["attribute"] != "title" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "request")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context to propagate, got %#v", stub.contexts)
	}

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, stub.calls[i], want[i])
		}
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.fields = append(s.fields, copied)
	return s
}
