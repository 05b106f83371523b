// Package journal records undo operations so a sequence of state changes
// spread over several stores can be rolled back as one unit.
//
// It follows the shape of go-ethereum's StateDB journal: every mutation appends
// its inverse, Snapshot returns a revision id and RevertToSnapshot replays the
// inverses newer than that revision in reverse order. Logs emitted while the
// journal is open are buffered and dropped together with the state they
// describe.
//
// A Journal is owned by a single operation and is not safe for concurrent use.
package journal

import (
	"context"
	"fmt"

	bCtx "github.com/x-xyz/escrow/base/ctx"
)

type Journal struct {
	undos []func()
	logs  []interface{}
}

func New() *Journal {
	return &Journal{}
}

// Append registers the inverse of a mutation that has just been applied
func (j *Journal) Append(undo func()) {
	j.undos = append(j.undos, undo)
}

// AddLog buffers a log entry, reverting past this point discards it
func (j *Journal) AddLog(entry interface{}) {
	n := len(j.logs)
	j.logs = append(j.logs, entry)
	j.undos = append(j.undos, func() {
		j.logs = j.logs[:n]
	})
}

// Logs returns the buffered log entries in emission order
func (j *Journal) Logs() []interface{} {
	res := make([]interface{}, len(j.logs))
	copy(res, j.logs)
	return res
}

func (j *Journal) Len() int {
	return len(j.undos)
}

func (j *Journal) Snapshot() int {
	return len(j.undos)
}

// RevertToSnapshot undoes every mutation recorded after the snapshot id
func (j *Journal) RevertToSnapshot(id int) {
	if id < 0 || id > len(j.undos) {
		panic(fmt.Errorf("journal revision %d cannot be reverted, length %d", id, len(j.undos)))
	}
	for i := len(j.undos) - 1; i >= id; i-- {
		j.undos[i]()
	}
	j.undos = j.undos[:id]
}

type ctxKey struct{}

// With attaches j to c, stores that find it through From journal their writes
func With(c bCtx.Ctx, j *Journal) bCtx.Ctx {
	return bCtx.Wrap(c, context.WithValue(c.Context, ctxKey{}, j))
}

// From returns the journal attached to c or nil
func From(c bCtx.Ctx) *Journal {
	if c.Context == nil {
		return nil
	}
	j, _ := c.Value(ctxKey{}).(*Journal)
	return j
}

// Record appends undo to the journal attached to c, if any
func Record(c bCtx.Ctx, undo func()) {
	if j := From(c); j != nil {
		j.Append(undo)
	}
}

// Participant is implemented by stores that journal their own writes through
// Record. Writes of other stores survive RevertToSnapshot, their callers have
// to record compensating actions instead.
type Participant interface {
	Journaled() bool
}

// Journaled reports whether v journals its own writes
func Journaled(v interface{}) bool {
	p, ok := v.(Participant)
	return ok && p.Journaled()
}
