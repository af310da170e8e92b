package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Codec: zstd-compressed JSON, written to a temp file in the same directory
// and renamed over the target. A crash mid-write leaves either the old file
// or the new one, never a truncated mix.

const Version = 1

func writeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)
	if err := json.NewEncoder(bw).Encode(v); err != nil {
		enc.Close()
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer dec.Close()

	if err := json.NewDecoder(bufio.NewReaderSize(dec, 256*1024)).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func checkVersion(path string, got int) error {
	if got != Version {
		return fmt.Errorf("%s: unsupported version %d (want %d)", filepath.Base(path), got, Version)
	}
	return nil
}

func WriteGroups(path string, s GroupsV1) error {
	s.Version = Version
	return writeFile(path, s)
}

// ReadGroups loads the groups collection. A missing file is not an error;
// it returns an empty collection so first boot starts clean.
func ReadGroups(path string) (GroupsV1, error) {
	var s GroupsV1
	if err := readFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return GroupsV1{Version: Version}, nil
		}
		return s, err
	}
	return s, checkVersion(path, s.Version)
}

func WriteCooldowns(path string, s CooldownsV1) error {
	s.Version = Version
	return writeFile(path, s)
}

func ReadCooldowns(path string) (CooldownsV1, error) {
	var s CooldownsV1
	if err := readFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return CooldownsV1{Version: Version}, nil
		}
		return s, err
	}
	return s, checkVersion(path, s.Version)
}

func WriteEffects(path string, s EffectsV1) error {
	s.Version = Version
	return writeFile(path, s)
}

func ReadEffects(path string) (EffectsV1, error) {
	var s EffectsV1
	if err := readFile(path, &s); err != nil {
		if os.IsNotExist(err) {
			return EffectsV1{Version: Version}, nil
		}
		return s, err
	}
	return s, checkVersion(path, s.Version)
}
