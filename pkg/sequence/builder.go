package sequence

import (
	"time"

	"github.com/idptools/loopscan/pkg/parser"
)

// Set maps each key to its sequences in chronological order. Keys are kept
// in order of first appearance.
type Set struct {
	keys      []string
	sequences map[string][]*Sequence
}

func (s *Set) Keys() []string {
	return s.keys
}

func (s *Set) Get(key string) []*Sequence {
	return s.sequences[key]
}

func (s *Set) Len() int {
	return len(s.keys)
}

// Builder groups events into sequences as they arrive. Events must be fed
// in chronological order; nothing is re-sorted.
type Builder struct {
	Threshold time.Duration
	Key       KeyFunc

	set *Set
}

func NewBuilder(key KeyFunc, threshold time.Duration) *Builder {
	if key == nil {
		key = ByClient
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Builder{
		Threshold: threshold,
		Key:       key,
		set:       &Set{sequences: make(map[string][]*Sequence)},
	}
}

func (b *Builder) Add(e parser.Event) {
	key := b.Key(e)
	seqs, ok := b.set.sequences[key]
	if !ok {
		b.set.keys = append(b.set.keys, key)
	}
	if !ok || !seqs[len(seqs)-1].Accepts(e.Time) {
		seqs = append(seqs, New(b.Threshold))
	}
	seqs[len(seqs)-1].Append(e)
	b.set.sequences[key] = seqs
}

// Set returns the sequences built so far. The last sequence of every key
// stays open; adding more events may extend it.
func (b *Builder) Set() *Set {
	return b.set
}

func Build(events []parser.Event, key KeyFunc, threshold time.Duration) *Set {
	b := NewBuilder(key, threshold)
	for _, e := range events {
		b.Add(e)
	}
	return b.Set()
}
