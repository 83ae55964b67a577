package storage

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/nishant0581/metacount/internal/counter"
)

// DefaultKey is the slot key counters are stored under.
const DefaultKey = "metaCounters"

type historyRecord struct {
	Value     int   `json:"value"`
	Timestamp int64 `json:"timestamp"`
}

// record is the on-disk shape of one counter.
type record struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	Count                   int             `json:"count"`
	Step                    int             `json:"step"`
	Min                     *int            `json:"min"`
	Max                     *int            `json:"max"`
	Notes                   string          `json:"notes"`
	History                 []historyRecord `json:"history"`
	IsAutoIncrementing      bool            `json:"isAutoIncrementing"`
	AutoIncrementIntervalID *int64          `json:"autoIncrementIntervalId"`
}

// Adapter mirrors the counter collection into a Slot.
type Adapter struct {
	slot Slot
	log  zerolog.Logger
	now  func() time.Time
}

// NewAdapter wraps slot. A nil logger discards output.
func NewAdapter(slot Slot, logger *zerolog.Logger) *Adapter {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Adapter{slot: slot, log: log, now: time.Now}
}

// Load reads the slot. Missing or unparseable data yields an empty list. The
// result is normalized: no timers, no duplicate or empty ids, step >= 1, and
// a history within capacity that is never empty.
func (a *Adapter) Load() []counter.Counter {
	data, err := a.slot.Read()
	if err != nil {
		if !errors.Is(err, ErrSlotEmpty) {
			a.log.Warn().Err(err).Msg("load counters failed; starting empty")
		}
		return []counter.Counter{}
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		a.log.Warn().Err(err).Msg("stored counters are unparseable; starting empty")
		return []counter.Counter{}
	}

	out := make([]counter.Counter, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.ID == "" {
			a.log.Warn().Str("name", r.Name).Msg("dropping stored counter without id")
			continue
		}
		if _, dup := seen[r.ID]; dup {
			a.log.Warn().Str("counter", r.ID).Msg("dropping stored counter with duplicate id")
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, a.fromRecord(r))
	}
	return out
}

// Save serializes counters without their timer handles and replaces the
// slot value. Failures are logged and returned; in-memory state stays
// authoritative either way.
func (a *Adapter) Save(counters []counter.Counter) error {
	records := make([]record, len(counters))
	for i, c := range counters {
		records[i] = toRecord(c)
	}
	data, err := json.Marshal(records)
	if err != nil {
		a.log.Error().Err(err).Msg("encode counters failed")
		return errors.Errorf("encode counters: %w", err)
	}
	if err := a.slot.Write(data); err != nil {
		a.log.Error().Err(err).Int("counters", len(counters)).Msg("save counters failed")
		return errors.Errorf("save counters: %w", err)
	}
	return nil
}

func toRecord(c counter.Counter) record {
	history := make([]historyRecord, len(c.History))
	for i, h := range c.History {
		history[i] = historyRecord{Value: h.Value, Timestamp: h.Timestamp.UnixMilli()}
	}
	return record{
		ID:      c.ID,
		Name:    c.Name,
		Count:   c.Count,
		Step:    c.Step,
		Min:     c.Min,
		Max:     c.Max,
		Notes:   c.Notes,
		History: history,
	}
}

func (a *Adapter) fromRecord(r record) counter.Counter {
	history := r.History
	if len(history) > counter.HistoryCapacity {
		history = history[len(history)-counter.HistoryCapacity:]
	}
	entries := make([]counter.HistoryEntry, 0, len(history))
	for _, h := range history {
		entries = append(entries, counter.HistoryEntry{Value: h.Value, Timestamp: time.UnixMilli(h.Timestamp)})
	}
	if len(entries) == 0 {
		entries = append(entries, counter.HistoryEntry{Value: r.Count, Timestamp: a.now()})
	}
	return counter.Counter{
		ID:      r.ID,
		Name:    r.Name,
		Count:   r.Count,
		Step:    max(1, r.Step),
		Min:     r.Min,
		Max:     r.Max,
		Notes:   r.Notes,
		History: entries,
	}
}
