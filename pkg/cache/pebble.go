package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"trustlens/pkg/insight"
)

// Pebble is the durable KV backend. Entries survive restarts and are
// visible to every process sharing the store. Pebble has no native TTL, so
// each record carries its stored_at timestamp and a read past the stale TTL
// deletes the record and reports a miss.
type Pebble struct {
	db   *pebble.DB
	opts Options

	now func() time.Time
}

func NewPebble(path string, opts Options) (*Pebble, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	return &Pebble{db: db, opts: opts, now: time.Now}, nil
}

func (p *Pebble) Get(key string) (Entry, bool) {
	e, stale, ok := p.GetWithStale(key)
	if !ok || stale {
		return Entry{}, false
	}
	return e, true
}

func (p *Pebble) GetWithStale(key string) (Entry, bool, bool) {
	value, closer, err := p.db.Get([]byte(key))
	if err != nil {
		// Not found and backend trouble both read as a miss; the lookup
		// path recovers via the providers.
		return Entry{}, false, false
	}
	var e Entry
	err = json.Unmarshal(value, &e)
	_ = closer.Close()
	if err != nil {
		_ = p.db.Delete([]byte(key), pebble.NoSync)
		return Entry{}, false, false
	}
	stale, usable := p.opts.age(e, p.now())
	if !usable {
		_ = p.db.Delete([]byte(key), pebble.NoSync)
		return Entry{}, false, false
	}
	return e, stale, true
}

func (p *Pebble) Set(key string, value insight.Insight) {
	e := Entry{Data: value, StoredAt: p.now()}
	encoded, err := json.Marshal(e)
	if err != nil {
		return
	}
	_ = p.db.Set([]byte(key), encoded, pebble.NoSync)
}

func (p *Pebble) Len() int {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return 0
	}
	defer iter.Close()
	n := 0
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n
}

func (p *Pebble) Backend() string { return "kv" }

func (p *Pebble) Close() error { return p.db.Close() }

var _ Store = (*Pebble)(nil)
