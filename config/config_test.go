package config

import "testing"

func TestDefaultHasNoCloudMirroring(t *testing.T) {
	c := Default("/tmp/flashts")
	if c.Cloud != nil {
		t.Fatal("expected cloud mirroring disabled by default")
	}
	if c.DBDir != "/tmp/flashts" {
		t.Fatalf("got db dir %q", c.DBDir)
	}
	if c.PersistInterval <= 0 {
		t.Fatal("expected a positive default persist interval")
	}
}
