package auction

import "sort"

// Queue is the nomination order: captain names consumed from the front,
// one entry per nomination turn. A captain whose team fills up keeps
// stale entries in the queue until NextEligible purges them.
type Queue struct {
	entries []string
}

// SeedQueue builds the initial order: rounds repetitions of the captain
// list sorted by descending budget, so higher-budget captains nominate
// first in every cycle.
func SeedQueue(captains []Captain, rounds int) *Queue {
	sorted := make([]Captain, len(captains))
	copy(sorted, captains)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Dollars > sorted[j].Dollars
	})
	q := &Queue{entries: make([]string, 0, len(sorted)*rounds)}
	for r := 0; r < rounds; r++ {
		for _, c := range sorted {
			q.entries = append(q.entries, c.Name)
		}
	}
	return q
}

// NewQueueFromEntries restores a queue from persisted order.
func NewQueueFromEntries(entries []string) *Queue {
	q := &Queue{entries: make([]string, len(entries))}
	copy(q.entries, entries)
	return q
}

// NextEligible returns the captain at the head of the queue whose roster
// still has room. Entries for captains with rosterSize >= teamSize are
// purged (the head entry and, opportunistically, every other stale entry
// for the same captain). Returns false once every captain has a full
// team. Idempotent: repeated calls without mutation return the same
// captain.
func (q *Queue) NextEligible(rosterSize func(name string) int, teamSize int) (string, bool) {
	for len(q.entries) > 0 {
		head := q.entries[0]
		if rosterSize(head) < teamSize {
			return head, true
		}
		q.purge(head)
	}
	return "", false
}

func (q *Queue) purge(name string) {
	kept := q.entries[:0]
	for _, e := range q.entries {
		if !SameName(e, name) {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}

// PopFront consumes the head entry. Called on settlement.
func (q *Queue) PopFront() (string, bool) {
	if len(q.entries) == 0 {
		return "", false
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, true
}

// PushFront reinserts a captain at the head, restoring their nomination
// priority. Called when a nomination is reversed.
func (q *Queue) PushFront(name string) {
	q.entries = append([]string{name}, q.entries...)
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Entries returns a copy of the current order for persistence.
func (q *Queue) Entries() []string {
	out := make([]string, len(q.entries))
	copy(out, q.entries)
	return out
}
