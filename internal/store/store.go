// Package store defines the DataStore and AudioProvider contracts the
// engine consumes (spec.md §6.1, §6.2) as plain interfaces rather than
// the reference implementation's CBCollection-holds-a-back-pointer-to-
// its-CBDataStore pattern (spec.md §9 Design Notes): a DataStore is a
// pure trait implemented by an opaque value, with no back-reference
// from any collection type to its owning store.
package store

// ListHeader describes a term's postings list.
type ListHeader struct {
	BlockCount int
}

// IsNull reports whether h represents "no list yet" (the zero value).
func (h ListHeader) IsNull() bool { return h.BlockCount == 0 }

// BlockHeader describes one physical block of a postings list.
type BlockHeader struct {
	ID       int // 1-based sequential block id
	BodySize int
	FIDmax   uint32
}

// IsNull reports whether h represents "no block yet" (the zero value).
func (h BlockHeader) IsNull() bool { return h.ID == 0 }

// DataStore is the capability set a host must provide for the engine
// to read and write postings and fingerprints (spec.md §6.1). All
// methods may block on I/O; the engine never spawns threads of its own
// and never calls concurrently into the same DataStore from one
// session.
type DataStore interface {
	// GetPlistBlock returns the body bytes of a term's block, or
	// (nil, false) if the block doesn't exist (term unknown, or
	// blockID past the end of the list).
	GetPlistBlock(term uint32, blockID int) ([]byte, bool)

	// GetFingerprintSize returns the byte length of FID's stored
	// fingerprint.
	GetFingerprintSize(fid uint32) (int, error)

	// GetFingerprint reads exactly nbytes starting at byteOffset from
	// FID's stored fingerprint; returning fewer bytes than requested is
	// an error.
	GetFingerprint(fid uint32, nbytes, byteOffset int) ([]byte, error)

	// OnIndexerStart / OnIndexerEnd bracket an indexing session.
	OnIndexerStart() error
	OnIndexerEnd() error

	// OnIndexerFlushStart / OnIndexerFlushEnd bracket one cache flush.
	OnIndexerFlushStart() error
	OnIndexerFlushEnd() error

	// OnIndexerListHeader returns the current list header for term, or
	// the zero value (ListHeader{}.IsNull() == true) if the term has no
	// list yet.
	OnIndexerListHeader(term uint32) (ListHeader, error)

	// OnIndexerBlockHeader returns the header of blockID within term's
	// list, or the zero value if it doesn't exist yet.
	OnIndexerBlockHeader(term uint32, blockID int) (BlockHeader, error)

	// OnIndexerChunk appends body to the current (already open)
	// append-block of term's list. block carries the block's updated
	// header (BodySize/FIDmax already advanced past the appended body);
	// the implementation MUST persist block.FIDmax as the block's new
	// FIDmax, not just append the bytes, since the next OnIndexerChunk
	// or OnIndexerBlockHeader call for this block depends on seeing the
	// advanced value as the delta-encoding base for the following chunk.
	OnIndexerChunk(term uint32, list ListHeader, block BlockHeader, body []byte) error

	// OnIndexerNewBlock closes the current append-block and starts a
	// new one, given the updated list header (BlockCount already
	// incremented) and the new block's header.
	OnIndexerNewBlock(term uint32, list ListHeader, block BlockHeader, body []byte) error

	// OnIndexerFingerprint stores the raw packed QLF bytes for fid.
	OnIndexerFingerprint(fid uint32, data []byte) error

	// Flush persists any buffered writes. Must be idempotent.
	Flush() error
}

// AudioProvider supplies PCM samples to the Indexer during index(FID)
// (spec.md §6.2).
type AudioProvider interface {
	// OnAudioData fills out with up to len(out) float samples in
	// [-1,1], 11025 Hz mono, and returns the number written. Returns 0
	// at end of stream, negative on error.
	OnAudioData(fid uint32, out []float32) int
}
