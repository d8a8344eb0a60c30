package httprma

import (
	"context"
	"fmt"

	"github.com/dreamware/kmerrma/internal/kmer"
	"github.com/dreamware/kmerrma/internal/rank"
	"github.com/dreamware/kmerrma/internal/rma"
)

// Client implements rma.Substrate by dialing the owning rank's HTTP server
// directly for payload/flag operations, and the rendezvous service for
// barriers. This is the directory described in SPEC_FULL.md §4.6: the
// rendezvous service is consulted only for barriers, never on the per-slot
// data path.
type Client struct {
	Directory      rank.Directory
	RendezvousAddr string
	MyRank         int
}

var _ rma.Substrate = (*Client)(nil)

func (c *Client) addrFor(r int) (string, error) {
	if r < 0 || r >= len(c.Directory.Ranks) {
		return "", fmt.Errorf("%w: rank %d not in directory", rma.ErrTransport, r)
	}

	addr := c.Directory.Ranks[r].Addr
	if addr == "" {
		return "", fmt.Errorf("%w: rank %d has no published address", rma.ErrTransport, r)
	}

	return addr, nil
}

// RemotePutPayload writes rec into s's payload cell on its owning rank.
func (c *Client) RemotePutPayload(ctx context.Context, s rma.Slot, rec kmer.Record) error {
	addr, err := c.addrFor(s.Rank)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/slot/%d/payload", addr, s.Local)
	if err := rank.PostJSON(ctx, url, toWire(rec), nil); err != nil {
		return fmt.Errorf("%w: put payload at %s: %w", rma.ErrTransport, s, err)
	}

	return nil
}

// RemoteGetPayload reads s's payload cell from its owning rank.
func (c *Client) RemoteGetPayload(ctx context.Context, s rma.Slot) (kmer.Record, error) {
	addr, err := c.addrFor(s.Rank)
	if err != nil {
		return kmer.Record{}, err
	}

	url := fmt.Sprintf("%s/slot/%d/payload", addr, s.Local)

	var wr wireRecord
	if err := rank.GetJSON(ctx, url, &wr); err != nil {
		return kmer.Record{}, fmt.Errorf("%w: get payload at %s: %w", rma.ErrTransport, s, err)
	}

	return wr.toRecord(), nil
}

// RemoteGetFlag reads s's flag cell from its owning rank.
func (c *Client) RemoteGetFlag(ctx context.Context, s rma.Slot) (int32, error) {
	addr, err := c.addrFor(s.Rank)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/slot/%d/flag", addr, s.Local)

	var fr flagResponse
	if err := rank.GetJSON(ctx, url, &fr); err != nil {
		return 0, fmt.Errorf("%w: get flag at %s: %w", rma.ErrTransport, s, err)
	}

	return fr.Flag, nil
}

// RemoteFetchAddFlag atomically adds delta to s's flag cell on its owning
// rank and returns the pre-increment value.
func (c *Client) RemoteFetchAddFlag(ctx context.Context, s rma.Slot, delta int32) (int32, error) {
	addr, err := c.addrFor(s.Rank)
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/slot/%d/flag/fetch-add", addr, s.Local)

	var resp fetchAddResponse
	if err := rank.PostJSON(ctx, url, fetchAddRequest{Delta: delta}, &resp); err != nil {
		return 0, fmt.Errorf("%w: fetch-add flag at %s: %w", rma.ErrTransport, s, err)
	}

	return resp.Pre, nil
}

// Barrier blocks this rank at the named phase until the rendezvous service
// reports every rank has arrived.
func (c *Client) Barrier(ctx context.Context, phase string) error {
	if err := rank.Barrier(ctx, c.RendezvousAddr, phase, c.MyRank); err != nil {
		return fmt.Errorf("%w: barrier %q: %w", rma.ErrTransport, phase, err)
	}

	return nil
}
