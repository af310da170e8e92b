package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_BracketsOrdered(t *testing.T) {
	d := Default()
	if len(d.Tax.Brackets) == 0 {
		t.Fatalf("no tax brackets")
	}
	last := d.Tax.Brackets[len(d.Tax.Brackets)-1]
	if last.UpTo >= 0 {
		t.Fatalf("top bracket must be open (up_to < 0), got %d", last.UpTo)
	}
	prev := int64(0)
	for _, b := range d.Tax.Brackets[:len(d.Tax.Brackets)-1] {
		if b.UpTo <= prev {
			t.Fatalf("brackets not ascending at up_to=%d", b.UpTo)
		}
		prev = b.UpTo
	}
}

func TestLoad_PartialOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := "growth:\n  cooldown_s: 42\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tun, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tun.Growth.CooldownS != 42 {
		t.Fatalf("override lost: %d", tun.Growth.CooldownS)
	}
	if tun.Growth.LongElapsedS != Default().Growth.LongElapsedS {
		t.Fatalf("default clobbered: %d", tun.Growth.LongElapsedS)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(path, []byte("growth: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want error for malformed yaml")
	}
}
