// Package slots implements the memory-budgeted notification store.
//
// The store holds at most Capacity records in a compacted array and charges
// each record RecordOverhead bytes plus its body capacity against a fixed
// MemoryBudget. Creation never fails: when the array is full or the budget is
// short, the oldest record (index 0) is evicted until the new one fits.
//
// Records are addressed by index. Indices shift when a record is removed, so
// callers must not hold on to an index across a mutation.
package slots
