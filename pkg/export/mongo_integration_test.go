//go:build integration

package export

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redcanaryco/vscode-attack/pkg/attack/attacktest"
)

func TestMongoSink(t *testing.T) {
	uri := os.Getenv("ATTACK_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("ATTACK_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sink, err := NewMongoSink(ctx, uri, "attack_test_"+time.Now().Format("150405"))
	if err != nil {
		t.Fatalf("NewMongoSink() error: %v", err)
	}
	defer func() {
		sink.db.Drop(ctx)
		sink.Close(ctx)
	}()

	snap := attacktest.Snapshot(t)
	first, err := Export(ctx, sink, snap, nil, nil)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if first["techniques"] != 7 {
		t.Errorf("first export techniques = %d, want 7 upserts", first["techniques"])
	}

	second, err := Export(ctx, sink, snap, nil, nil)
	if err != nil {
		t.Fatalf("second Export() error: %v", err)
	}
	if second["techniques"] != 0 {
		t.Errorf("second export changed %d techniques, want 0", second["techniques"])
	}
}
