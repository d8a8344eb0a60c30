// Package contig implements the out-of-core driver that sits on top of the
// hash table: reading a rank's share of the input k-mers and walking
// forward-extension chains into assembled contigs (SPEC_FULL.md §4.8).
// Inserting the records into the table is left to the caller (cmd/rankd). It is the "collaborator" spec.md's Non-goals name as
// out of core scope, given a home here so the table has a caller at all.
package contig

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dreamware/kmerrma/internal/hashtable"
	"github.com/dreamware/kmerrma/internal/kmer"
)

// maxWalkers bounds how many contigs are walked concurrently — distinct
// contigs share no mutable state, so the only reason to bound it is to cap
// the number of in-flight Find calls against the substrate at once.
const maxWalkers = 16

// Contig is one assembled sequence: the concatenation of every k-mer's
// single new base along a forward-extension chain, starting from a
// contig-head k-mer.
type Contig struct {
	Bases string
}

// CountLines returns the number of non-empty lines in a k-mer file — used
// to derive the table's global logical capacity from the configured load
// factor before any rank allocates its local store. Every rank reads the
// same shared kmer_file independently and arrives at the same count, so no
// collective reduction is needed to agree on it.
func CountLines(path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // operator-provided shard path
	if err != nil {
		return 0, fmt.Errorf("contig: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("contig: scan %s: %w", path, err)
	}

	return count, nil
}

// ReadShard parses a k-mer text file and returns every line whose index
// modulo worldSize equals rank — the Go equivalent of the original
// read_kmers(fname, rank_n, rank_me) signature. Each line holds three
// whitespace-separated fields: the raw ACGT bases, the forward extension
// character, and the backward extension character.
//
// kmerLen is the configured k-mer length (config.Config.KmerLen). Every
// line's bases are checked against it before any record is built, the Go
// equivalent of the original's upfront kmer_size(kmer_fname) != KMER_LEN
// fatal check — there it's a single peek at the file before any rank does
// work; here every line is checked, since a sharded text file offers no
// single authoritative line to peek at and the check is cheap either way.
func ReadShard(path string, worldSize, rank, kmerLen int) ([]kmer.Record, error) {
	f, err := os.Open(path) //nolint:gosec // operator-provided shard path
	if err != nil {
		return nil, fmt.Errorf("contig: open %s: %w", path, err)
	}
	defer f.Close()

	var (
		recs  []kmer.Record
		index int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("contig: %s:%d: expected 3 fields, got %d", path, index+1, len(fields))
		}

		bases := fields[0]
		if len(bases) != kmerLen {
			return nil, fmt.Errorf("contig: %s:%d: contains %d-mers, while configured for %d-mers",
				path, index+1, len(bases), kmerLen)
		}

		isMine := index%worldSize == rank
		index++

		if !isMine {
			continue
		}

		fwd, bwd := fields[1][0], fields[2][0]

		rec, err := kmer.NewRecord(bases, kmerLen, fwd, bwd)
		if err != nil {
			return nil, fmt.Errorf("contig: %s:%d: %w", path, index, err)
		}

		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("contig: scan %s: %w", path, err)
	}

	return recs, nil
}

// Walk follows every forward-extension chain in starts — each of which must
// be a contig head (BackwardExt == kmer.NoExtension) — until it reaches a
// contig tail, assembling one Contig per start. Starts are walked
// concurrently via a bounded errgroup, since the spec places no ordering
// requirement between finds on distinct keys.
func Walk(ctx context.Context, tbl *hashtable.Table, starts []kmer.Record) ([]Contig, error) {
	contigs := make([]Contig, len(starts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWalkers)

	for i, start := range starts {
		i, start := i, start

		g.Go(func() error {
			c, err := walkOne(ctx, tbl, start)
			if err != nil {
				return err
			}

			contigs[i] = c

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return contigs, nil
}

func walkOne(ctx context.Context, tbl *hashtable.Table, start kmer.Record) (Contig, error) {
	if !start.IsContigHead() {
		return Contig{}, fmt.Errorf("contig: walk start is not a contig head")
	}

	var sb strings.Builder
	sb.WriteString(start.BasesString())

	cur := start

	for !cur.IsContigTail() {
		nextKey, err := cur.NextKey()
		if err != nil {
			return Contig{}, fmt.Errorf("contig: compute next key: %w", err)
		}

		sb.WriteByte(cur.ForwardExt)

		var next kmer.Record
		if err := tbl.Find(ctx, nextKey, &next); err != nil {
			return Contig{}, fmt.Errorf("contig: walk: %w", err)
		}

		cur = next
	}

	return Contig{Bases: sb.String()}, nil
}
