package recordstore

import (
	"fmt"
)

// Tx is the working copy handed to a Mutate callback. It is only valid
// inside the callback.
type Tx[T any] struct {
	rows  map[uint]T
	seq   uint
	codec Codec[T]
	dirty bool
}

func (tx *Tx[T]) Get(id uint) (T, bool) {
	v, ok := tx.rows[id]
	return v, ok
}

// All returns the records ordered by id.
func (tx *Tx[T]) All() []T {
	return sortedValues(tx.rows)
}

// AllocateID reserves the next id. Ids are never handed out twice, even
// after the record holding the highest id is deleted.
func (tx *Tx[T]) AllocateID() uint {
	tx.seq++
	tx.dirty = true
	return tx.seq
}

// Insert adds a record whose id was obtained from AllocateID.
func (tx *Tx[T]) Insert(v T) error {
	id := tx.codec.ID(v)
	if id == 0 || id > tx.seq {
		return fmt.Errorf("record id %d was not allocated", id)
	}
	if _, exists := tx.rows[id]; exists {
		return fmt.Errorf("record %d already exists", id)
	}
	tx.rows[id] = v
	tx.dirty = true
	return nil
}

// Update replaces an existing record.
func (tx *Tx[T]) Update(v T) error {
	id := tx.codec.ID(v)
	if _, exists := tx.rows[id]; !exists {
		return fmt.Errorf("record %d does not exist", id)
	}
	tx.rows[id] = v
	tx.dirty = true
	return nil
}

// Delete removes a record and reports whether it existed.
func (tx *Tx[T]) Delete(id uint) bool {
	if _, exists := tx.rows[id]; !exists {
		return false
	}
	delete(tx.rows, id)
	tx.dirty = true
	return true
}
