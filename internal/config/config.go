// Package config loads cluster topology and run parameters for a rank
// process: a JSONC file read with tailscale/hujson, overlaid with
// CLI flags parsed by spf13/pflag, the same two-stage load/override shape
// calvinalkan-agent-task uses for its own Config (config.go) and cli.Command
// flag sets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/tailscale/hujson"

	flag "github.com/spf13/pflag"
)

// RunType selects the logging/output posture of a rank process.
type RunType string

const (
	RunTypeDefault RunType = ""
	RunTypeVerbose RunType = "verbose"
	RunTypeTest    RunType = "test"
)

// DefaultLoadFactor is the load factor used to size the table's logical
// capacity from an input k-mer count when the config file doesn't override
// it (SPEC_FULL.md §4.7).
const DefaultLoadFactor = 0.5

// ErrWorldSizeInvalid is returned when world_size is not a positive integer.
var ErrWorldSizeInvalid = errors.New("config: world_size must be > 0")

// ErrRendezvousAddrRequired is returned when rendezvous_addr is empty.
var ErrRendezvousAddrRequired = errors.New("config: rendezvous_addr is required")

// ErrKmerLenInvalid is returned when kmer_len is not a positive integer.
var ErrKmerLenInvalid = errors.New("config: kmer_len must be > 0")

// Config is the complete set of run parameters read by cmd/rankd
// (cmd/rendezvousd takes its settings from environment variables instead).
type Config struct {
	WorldSize      int     `json:"world_size"`
	RendezvousAddr string  `json:"rendezvous_addr"`
	LoadFactor     float64 `json:"load_factor"`
	KmerLen        int     `json:"kmer_len"`
	KmerFile       string  `json:"kmer_file"`
	RunType        RunType `json:"run_type"`
	TestPrefix     string  `json:"test_prefix"`
	OutputPrefix   string  `json:"output_prefix"`
	Codec          string  `json:"codec"`
}

// defaultConfig returns a config with every field that has a spec-mandated
// default already applied.
func defaultConfig() Config {
	return Config{
		LoadFactor:   DefaultLoadFactor,
		OutputPrefix: "contigs",
		Codec:        "none",
	}
}

// Load reads a JSONC config file at path (if non-empty and present), then
// applies overrides from args (typically os.Args[1:]) parsed with a
// pflag.FlagSet, and validates the result.
func Load(path string, args []string) (Config, error) {
	cfg := defaultConfig()

	if path != "" {
		fileCfg, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}

		cfg = merge(cfg, fileCfg)
	}

	cfg, err := applyFlags(cfg, args)
	if err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided config path
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: invalid JSONC in %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: invalid JSON in %s: %w", path, err)
	}

	return cfg, nil
}

// merge overlays non-zero fields of overlay onto base.
func merge(base, overlay Config) Config {
	if overlay.WorldSize != 0 {
		base.WorldSize = overlay.WorldSize
	}
	if overlay.RendezvousAddr != "" {
		base.RendezvousAddr = overlay.RendezvousAddr
	}
	if overlay.LoadFactor != 0 {
		base.LoadFactor = overlay.LoadFactor
	}
	if overlay.KmerLen != 0 {
		base.KmerLen = overlay.KmerLen
	}
	if overlay.KmerFile != "" {
		base.KmerFile = overlay.KmerFile
	}
	if overlay.RunType != "" {
		base.RunType = overlay.RunType
	}
	if overlay.TestPrefix != "" {
		base.TestPrefix = overlay.TestPrefix
	}
	if overlay.OutputPrefix != "" {
		base.OutputPrefix = overlay.OutputPrefix
	}
	if overlay.Codec != "" {
		base.Codec = overlay.Codec
	}

	return base
}

// applyFlags parses args against a pflag.FlagSet seeded with cfg's current
// values as defaults, so an unset flag leaves the file-loaded value intact.
func applyFlags(cfg Config, args []string) (Config, error) {
	fs := flag.NewFlagSet("kmerrma", flag.ContinueOnError)

	worldSize := fs.Int("world-size", cfg.WorldSize, "number of ranks in the world")
	rendezvousAddr := fs.String("rendezvous-addr", cfg.RendezvousAddr, "rendezvous service base URL")
	loadFactor := fs.Float64("load-factor", cfg.LoadFactor, "table load factor used to size capacity")
	kmerLen := fs.Int("kmer-len", cfg.KmerLen, "k-mer length")
	kmerFile := fs.String("kmer-file", cfg.KmerFile, "path to the input k-mer shard file")
	runType := fs.String("run-type", string(cfg.RunType), "run posture: verbose|test|\"\"")
	testPrefix := fs.String("test-prefix", cfg.TestPrefix, "output file prefix used in test run mode")
	outputPrefix := fs.String("output-prefix", cfg.OutputPrefix, "output contig file prefix")
	codec := fs.String("codec", cfg.Codec, "output compression codec: none|snappy|lz4")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("config: parse flags: %w", err)
	}

	cfg.WorldSize = *worldSize
	cfg.RendezvousAddr = *rendezvousAddr
	cfg.LoadFactor = *loadFactor
	cfg.KmerLen = *kmerLen
	cfg.KmerFile = *kmerFile
	cfg.RunType = RunType(*runType)
	cfg.TestPrefix = *testPrefix
	cfg.OutputPrefix = *outputPrefix
	cfg.Codec = *codec

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.WorldSize <= 0 {
		return ErrWorldSizeInvalid
	}

	if cfg.RendezvousAddr == "" {
		return ErrRendezvousAddrRequired
	}

	if cfg.KmerLen <= 0 {
		return ErrKmerLenInvalid
	}

	return nil
}

// TableCapacity derives the table's logical capacity from a k-mer count and
// the configured load factor (SPEC_FULL.md §3: capacity = ceil(count / load
// factor)).
func (c Config) TableCapacity(kmerCount int) uint64 {
	lf := c.LoadFactor
	if lf <= 0 {
		lf = DefaultLoadFactor
	}

	return uint64(math.Ceil(float64(kmerCount) / lf))
}
