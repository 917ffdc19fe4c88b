// Package match implements the read-side Posting Iterator and the
// DaaT Matcher (spec.md §4.4, §4.5), grounded on
// original_source/src/ident/Matcher.h's internal naming for the
// histogram-bin and candidate bookkeeping types.
package match

import (
	"github.com/echoid/engine/internal/acierrors"
	"github.com/echoid/engine/internal/indexcodec"
	"github.com/echoid/engine/internal/store"
)

// PostingIterator provides cursor-style traversal over one term's
// postings (spec.md §4.4). Not safe for concurrent use; one iterator
// belongs to one matching session.
type PostingIterator struct {
	s           store.DataStore
	term        uint32
	nextBlockID int
	decoded     []indexcodec.Posting
	pos         int
	fidBase     uint32
	eol         bool
	err         error
}

// Err returns the fatal decode error recorded by the iterator, if any.
// A non-nil Err always means EOL was forced early and the matching
// session must abort with acierrors.InvalidIndexData (spec.md §4.4,
// §7).
func (it *PostingIterator) Err() error { return it.err }

// NewPostingIterator opens an iterator over term's postings list,
// starting at block 1.
func NewPostingIterator(s store.DataStore, term uint32) *PostingIterator {
	return &PostingIterator{s: s, term: term, nextBlockID: 1}
}

// EOL reports whether the iterator has reached the end of the list.
func (it *PostingIterator) EOL() bool { return it.eol }

// Get returns the posting currently under the cursor without
// advancing, and ok=false at EOL.
func (it *PostingIterator) Get() (indexcodec.Posting, bool) {
	if it.eol {
		return indexcodec.Posting{}, false
	}
	if it.pos >= len(it.decoded) {
		if !it.fetchNextBlock() {
			return indexcodec.Posting{}, false
		}
	}
	return it.decoded[it.pos], true
}

// Next advances the cursor, fetching and decoding the next block on
// exhaustion of the current one.
func (it *PostingIterator) Next() {
	if it.eol {
		return
	}
	it.pos++
	if it.pos >= len(it.decoded) {
		it.fetchNextBlock()
	}
}

func (it *PostingIterator) fetchNextBlock() bool {
	body, ok := it.s.GetPlistBlock(it.term, it.nextBlockID)
	if !ok {
		it.eol = true
		return false
	}
	postings, err := indexcodec.DecodeBlock(body, it.fidBase)
	if err != nil {
		it.eol = true
		it.err = acierrors.InvalidIndexData("PostingIterator.fetchNextBlock", "invalid postings block").Wrap(err)
		return false
	}
	if len(postings) == 0 {
		it.eol = true
		it.err = acierrors.InvalidIndexData("PostingIterator.fetchNextBlock", "zero-size decode of a non-empty block")
		return false
	}
	it.decoded = postings
	it.pos = 0
	it.fidBase = postings[len(postings)-1].FID
	it.nextBlockID++
	return true
}
