package gx3d

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_DefaultIsSilent(t *testing.T) {
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("default logger should discard everything")
	}
}

func TestLogger_SetAndRestore(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Warn("gx3d: unknown opcode", "op", 0x99)
	if !strings.Contains(buf.String(), "unknown opcode") {
		t.Fatalf("record not written: %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("SetLogger(nil) should restore the silent logger")
	}
}

func TestLogger_PerEngine(t *testing.T) {
	newLogged := func() (*GXEngine, *bytes.Buffer) {
		var buf bytes.Buffer
		l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		return newTestEngine(t, WithLogger(l)), &buf
	}
	a, bufA := newLogged()
	b, bufB := newLogged()

	a.WriteCommand(0x99, 0)
	a.Run(1000)
	if !strings.Contains(bufA.String(), "unknown geometry command") {
		t.Fatalf("first engine did not log: %q", bufA.String())
	}
	if bufB.Len() != 0 {
		t.Fatalf("second engine got the first one's record: %q", bufB.String())
	}

	b.WriteCommand(0x99, 0)
	b.Run(1000)
	if strings.Count(bufA.String(), "unknown geometry command") != 1 {
		t.Fatalf("first engine logged the second one's record: %q", bufA.String())
	}
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("WithLogger must leave the package logger alone")
	}
}
