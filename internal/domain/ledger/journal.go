package ledger

import "sync"

// DefaultJournalCapacity bounds the in-memory journal
const DefaultJournalCapacity = 1000

// Journal is a bounded in-memory Recorder. It keeps the most recent
// transactions for queries and a pending buffer that the persistence layer
// drains on save. Both hold at most capacity entries; when the pending
// buffer overflows the oldest unsaved entries are dropped and counted.
type Journal struct {
	mu       sync.Mutex
	capacity int
	recent   []*Transaction
	pending  []*Transaction
	dropped  int
}

// NewJournal creates a journal holding at most capacity recent transactions
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = DefaultJournalCapacity
	}
	return &Journal{capacity: capacity}
}

// Record appends a transaction
func (j *Journal) Record(tx *Transaction) {
	if tx == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.recent = trimOldest(append(j.recent, tx), j.capacity)
	j.pending = append(j.pending, tx)
	if over := len(j.pending) - j.capacity; over > 0 {
		j.dropped += over
		j.pending = trimOldest(j.pending, j.capacity)
	}
}

func trimOldest(txs []*Transaction, capacity int) []*Transaction {
	if over := len(txs) - capacity; over > 0 {
		return append([]*Transaction(nil), txs[over:]...)
	}
	return txs
}

// Find returns recent transactions matching opts, newest first unless
// opts.OrderBy asks for ascending order
func (j *Journal) Find(opts QueryOptions) []*Transaction {
	j.mu.Lock()
	defer j.mu.Unlock()

	matched := make([]*Transaction, 0, len(j.recent))
	for _, tx := range j.recent {
		if opts.Matches(tx) {
			matched = append(matched, tx)
		}
	}

	if opts.OrderBy != "timestamp ASC" {
		for i, k := 0, len(matched)-1; i < k; i, k = i+1, k-1 {
			matched[i], matched[k] = matched[k], matched[i]
		}
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return nil
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}
	return matched
}

// Len returns the number of retained transactions
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.recent)
}

// Drain returns and clears the transactions not yet persisted
func (j *Journal) Drain() []*Transaction {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := j.pending
	j.pending = nil
	return out
}

// Requeue puts drained transactions back in front of the pending buffer,
// typically after a failed write. The bound still applies.
func (j *Journal) Requeue(txs []*Transaction) {
	if len(txs) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	merged := make([]*Transaction, 0, len(txs)+len(j.pending))
	merged = append(merged, txs...)
	merged = append(merged, j.pending...)
	if over := len(merged) - j.capacity; over > 0 {
		j.dropped += over
		merged = merged[over:]
	}
	j.pending = merged
}

// Pending returns the number of transactions waiting to be persisted
func (j *Journal) Pending() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.pending)
}

// Dropped returns how many unsaved transactions were discarded on overflow
func (j *Journal) Dropped() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// Clear drops all retained and pending transactions
func (j *Journal) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recent = nil
	j.pending = nil
}
