package redis

import (
	"context"
	"testing"
)

func TestKey(t *testing.T) {
	defer SetKeyPrefix("")

	SetKeyPrefix("")
	if got := Key("xp:backfill:u1"); got != "xp:backfill:u1" {
		t.Fatalf("got %q", got)
	}
	SetKeyPrefix(" fpk: ")
	if got := Key("xp:backfill:u1"); got != "fpk:xp:backfill:u1" {
		t.Fatalf("got %q", got)
	}
	if got := Key("xp", "backfill", "u2"); got != "fpk:xp:backfill:u2" {
		t.Fatalf("got %q", got)
	}
	if got := Key(); got != "fpk" {
		t.Fatalf("got %q", got)
	}
}

func TestNotConnected(t *testing.T) {
	if IsConnected() {
		t.Skip("client set by another test")
	}
	if _, err := TryLock(context.Background(), "k", "v", 0); err == nil {
		t.Fatalf("expected error without client")
	}
}
