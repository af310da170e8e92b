package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestGroups_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json.zst")

	in := GroupsV1{
		Groups: []GroupV1{{
			ID:         "g1",
			Enabled:    true,
			TaxEnabled: true,
			Treasury:   420,
			Users: []UserV1{{
				ID:       "u1",
				Nickname: "alice",
				Length:   33,
				Hardness: 4,
				Coins:    105,
				LastSign: 1700000000,
				Items:    ItemsV1{Viagra: 2, Sterilized: true, SavedDepth: 7},
				ActiveEffects: []string{"fx-1"},
			}},
		}},
	}
	if err := WriteGroups(path, in); err != nil {
		t.Fatalf("WriteGroups: %v", err)
	}
	out, err := ReadGroups(path)
	if err != nil {
		t.Fatalf("ReadGroups: %v", err)
	}
	in.Version = Version
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestEffects_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.json.zst")

	in := EffectsV1{
		Effects: []EffectV1{{
			ID: "fx-1", Kind: "TIMED_WORK", GroupID: "g1", OwnerID: "u1",
			Start: 1700000000, End: 1700007200, State: "ACTIVE",
			Hours: 2, Multiplier: 1, TotalReward: 60,
		}},
		Giveaways: []GiveawayV1{{
			ID: "ga-1", GroupID: "g1", SenderID: "u1",
			Total: 100, Remaining: 40, Shares: 5, Left: 2,
			Claims: map[string]int64{"u2": 25, "u3": 35}, CreatedAt: 1700000000,
		}},
		Markets: []MarketBookV1{{
			GroupID: "g1", NextID: 3,
			Listings: []ListingV1{{ID: 1, SellerID: "u2", Length: 50, Hardness: 3, Price: 200, ListedAt: 1700000000}},
		}},
	}
	if err := WriteEffects(path, in); err != nil {
		t.Fatalf("WriteEffects: %v", err)
	}
	out, err := ReadEffects(path)
	if err != nil {
		t.Fatalf("ReadEffects: %v", err)
	}
	in.Version = Version
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestRead_MissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := ReadCooldowns(filepath.Join(dir, "cooldowns.json.zst"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(s.Groups) != 0 || s.Version != Version {
		t.Fatalf("want empty current-version collection, got %+v", s)
	}
}

func TestWrite_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cooldowns.json.zst")
	if err := WriteCooldowns(path, CooldownsV1{}); err != nil {
		t.Fatalf("WriteCooldowns: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file still present after rename")
	}
}

func TestRead_VersionGate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json.zst")
	if err := writeFile(path, GroupsV1{Version: 99}); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if _, err := ReadGroups(path); err == nil {
		t.Fatalf("want version error")
	}
}
