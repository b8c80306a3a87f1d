package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFieldsTrimsAndOmits(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  " + FieldSession + "  ", Value: "  abc12345  "},
		StringField{Key: "", Value: "ignored"},
		StringField{Key: FieldPhase, Value: "   "},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	want := zap.String(FieldSession, "abc12345")
	if !fields[0].Equals(want) {
		t.Fatalf("expected %v, got %v", want, fields[0])
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	log := WithFields(nil, zap.String("k", "v"))
	if log == nil {
		t.Fatal("expected a usable logger")
	}
	log.Info("must not panic")
}

func TestWithSessionAttachesID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	WithSession(zap.New(core), "abc12345").Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	got := entries[0].ContextMap()[FieldSession]
	if got != "abc12345" {
		t.Fatalf("expected session id field, got %v", got)
	}
}

func TestWithSessionEmptyID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	WithSession(zap.New(core), "  ").Info("hello")

	if fields := logs.All()[0].Context; len(fields) != 0 {
		t.Fatalf("expected no fields, got %v", fields)
	}
}

func TestTruncateForLog(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"  padded  ", 10, "padded"},
		{"truncate me", 8, "truncate..."},
		{"anything", 0, ""},
	}

	for _, tc := range cases {
		if got := TruncateForLog(tc.in, tc.limit); got != tc.want {
			t.Errorf("TruncateForLog(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}
