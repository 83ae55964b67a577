// Package storage persists the counter collection under a single durable
// key.
//
// A Slot is one key-value cell: FileSlot writes a JSON file atomically,
// SQLiteSlot keeps the value in a kv table, MemorySlot lives in process
// memory. The Adapter converts between counters and their JSON records.
// Loading never fails outright; missing or corrupt data starts an empty
// collection.
package storage
