package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "kmerrma.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoadFromFileWithComments(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `{
		// topology
		"world_size": 4,
		"rendezvous_addr": "http://127.0.0.1:9000",
		"kmer_len": 21,
		"kmer_file": "reads.kmers",
	}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.WorldSize)
	require.Equal(t, "http://127.0.0.1:9000", cfg.RendezvousAddr)
	require.Equal(t, 21, cfg.KmerLen)
	require.Equal(t, DefaultLoadFactor, cfg.LoadFactor)
}

func TestCLIOverridesFile(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `{
		"world_size": 4,
		"rendezvous_addr": "http://127.0.0.1:9000",
		"kmer_len": 21,
	}`)

	cfg, err := Load(path, []string{"--world-size=8", "--load-factor=0.75"})
	require.NoError(t, err)
	require.Equal(t, 8, cfg.WorldSize)
	require.InDelta(t, 0.75, cfg.LoadFactor, 0.0001)
	require.Equal(t, "http://127.0.0.1:9000", cfg.RendezvousAddr)
}

func TestLoadRejectsMissingRendezvousAddr(t *testing.T) {
	path := writeConfigFile(t, t.TempDir(), `{"world_size": 2}`)

	_, err := Load(path, nil)
	require.ErrorIs(t, err, ErrRendezvousAddrRequired)
}

func TestLoadRejectsZeroWorldSize(t *testing.T) {
	_, err := Load("", []string{"--rendezvous-addr=http://x"})
	require.ErrorIs(t, err, ErrWorldSizeInvalid)
}

func TestLoadRejectsZeroKmerLen(t *testing.T) {
	_, err := Load("", []string{"--world-size=2", "--rendezvous-addr=http://x"})
	require.ErrorIs(t, err, ErrKmerLenInvalid)
}

func TestTableCapacity(t *testing.T) {
	// 10 kmers at load factor 0.5 is an exact 20, not 21 — TableCapacity must
	// not add an unconditional +1 on top of the ceiling.
	cfg := Config{LoadFactor: 0.5}
	require.Equal(t, uint64(20), cfg.TableCapacity(10))

	// 10 kmers at load factor 0.4 is 25.0 exactly too.
	cfg = Config{LoadFactor: 0.4}
	require.Equal(t, uint64(25), cfg.TableCapacity(10))

	// A genuinely fractional case must round up, not truncate.
	cfg = Config{LoadFactor: 0.3}
	require.Equal(t, uint64(34), cfg.TableCapacity(10)) // 10/0.3 = 33.33...

	// A zero/unset load factor falls back to the default.
	cfg = Config{LoadFactor: 0}
	require.Equal(t, uint64(20), cfg.TableCapacity(10))
}
