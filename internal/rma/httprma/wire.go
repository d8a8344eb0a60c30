// Package httprma implements the RMA substrate (rma.Substrate) over HTTP
// between rank processes, grounded in the teacher's cmd/node shard-request
// handlers generalized from keyed shard storage to indexed slot storage,
// and routed with gorilla/mux (SPEC_FULL.md §4.2).
package httprma

import "github.com/dreamware/kmerrma/internal/kmer"

// wireRecord is the JSON wire form of a kmer.Record: packed words plus the
// two extension bytes. Sent as strings for the extension bytes' JSON
// friendliness.
type wireRecord struct {
	Bases       []uint64 `json:"bases"`
	K           int      `json:"k"`
	ForwardExt  string   `json:"forward_ext"`
	BackwardExt string   `json:"backward_ext"`
}

func toWire(r kmer.Record) wireRecord {
	return wireRecord{
		Bases:       r.Bases,
		K:           r.K,
		ForwardExt:  string(r.ForwardExt),
		BackwardExt: string(r.BackwardExt),
	}
}

func (w wireRecord) toRecord() kmer.Record {
	var fwd, bwd byte
	if len(w.ForwardExt) > 0 {
		fwd = w.ForwardExt[0]
	}
	if len(w.BackwardExt) > 0 {
		bwd = w.BackwardExt[0]
	}

	return kmer.Record{Bases: w.Bases, K: w.K, ForwardExt: fwd, BackwardExt: bwd}
}

type fetchAddRequest struct {
	Delta int32 `json:"delta"`
}

type fetchAddResponse struct {
	Pre int32 `json:"pre"`
}

type flagResponse struct {
	Flag int32 `json:"flag"`
}
