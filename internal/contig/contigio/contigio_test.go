package contigio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/kmerrma/internal/contig"
)

func TestWriteRankUncompressedRoundTrips(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "contigs")
	contigs := []contig.Contig{{Bases: "AAACGT"}, {Bases: "TTTGCA"}}

	require.NoError(t, WriteRank(prefix, 0, contigs, CodecNone))

	data, err := os.ReadFile(prefix + "_0.dat")
	require.NoError(t, err)
	require.Equal(t, "AAACGT\nTTTGCA\n", string(data))
}

func TestWriteRankSnappyRoundTrips(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "contigs")
	contigs := []contig.Contig{{Bases: "ACGT"}}

	require.NoError(t, WriteRank(prefix, 1, contigs, CodecSnappy))

	data, err := os.ReadFile(prefix + "_1.dat")
	require.NoError(t, err)

	decoded, err := snappy.Decode(nil, data)
	require.NoError(t, err)
	require.Equal(t, "ACGT\n", string(decoded))
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("")
	require.NoError(t, err)
	require.Equal(t, CodecNone, c)

	c, err = ParseCodec("LZ4")
	require.NoError(t, err)
	require.Equal(t, CodecLZ4, c)

	_, err = ParseCodec("bogus")
	require.Error(t, err)
}
