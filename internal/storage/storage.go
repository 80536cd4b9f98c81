// Package storage is the key-value store adapter: a narrow interface over
// the single-table layout with a DynamoDB implementation for production
// and an in-memory implementation for tests and local development.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Attribute names of the composite primary key.
const (
	AttrPK = "PK"
	AttrSK = "SK"
)

// Hard bounds imposed by the backing store.
const (
	MaxTransactItems = 25
	MaxBatchGetKeys  = 100
)

// ErrConditionFailed is returned when a conditional write loses its
// condition. Callers translate it into a domain error.
var ErrConditionFailed = errors.New("storage: condition failed")

// UnavailableError wraps a backend failure. It is the only retryable
// error category the adapter produces.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

type Key struct {
	PK string
	SK string
}

// Item is one row of the table, keyed by attribute name.
type Item map[string]any

func (it Item) Key() Key {
	return Key{PK: it.String(AttrPK), SK: it.String(AttrSK)}
}

func (it Item) String(attr string) string {
	if v, ok := it[attr].(string); ok {
		return v
	}
	return ""
}

// Int reads a numeric attribute. Legacy rows stored some counters as
// strings; those still parse. Anything else reads as zero.
func (it Item) Int(attr string) int {
	switch v := it[attr].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func (it Item) Bool(attr string) bool {
	if v, ok := it[attr].(bool); ok {
		return v
	}
	return false
}

func (it Item) Strings(attr string) []string {
	switch v := it[attr].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Condition guards a write. Zero value means unconditional.
type Condition struct {
	IfAbsent   bool // the item must not exist
	IfExists   bool // the item must exist
	AttrEquals map[string]any
}

func (c Condition) empty() bool {
	return !c.IfAbsent && !c.IfExists && len(c.AttrEquals) == 0
}

type Put struct {
	Item Item
	Cond Condition
}

type Update struct {
	Key  Key
	Set  map[string]any
	Cond Condition
}

// Increment adjusts a numeric attribute by Delta, seeding a missing
// attribute at zero. RequirePositive conditions the write on the current
// value being greater than zero, which floors decrements at zero.
type Increment struct {
	Key             Key
	Attr            string
	Delta           int
	RequirePositive bool
	Cond            Condition
}

type Delete struct {
	Key  Key
	Cond Condition
}

// TransactItem is one operation of an atomic write group. Exactly one
// field must be set.
type TransactItem struct {
	Put       *Put
	Update    *Update
	Increment *Increment
	Delete    *Delete
}

// Query reads one partition in sort-key order.
type Query struct {
	PK         string
	SKPrefix   string
	Descending bool
	Limit      int
}

// Scan reads the whole table through a filter. Used only by maintenance
// paths; serving paths stay on Get/Query/BatchGet.
type Scan struct {
	SKPrefix   string
	SKIn       []string
	AttrEquals map[string]any
}

type Store interface {
	// Get returns (nil, nil) when the item does not exist.
	Get(ctx context.Context, key Key) (Item, error)
	Put(ctx context.Context, put Put) error
	Update(ctx context.Context, upd Update) error
	Increment(ctx context.Context, inc Increment) error
	Delete(ctx context.Context, del Delete) error
	Query(ctx context.Context, q Query) ([]Item, error)
	Scan(ctx context.Context, s Scan) ([]Item, error)
	// BatchGet returns only the items that exist, in no particular order.
	BatchGet(ctx context.Context, keys []Key) ([]Item, error)
	TransactWrite(ctx context.Context, items ...TransactItem) error
}
