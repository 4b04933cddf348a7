// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package state

import (
	"fmt"
	"sort"
)

type revision struct {
	id    int
	index int
}

// Journal records undo closures for every mutation applied by the
// engines so a whole transaction can be rolled back.
// It is not safe for concurrent use, the processor owns it.
type Journal struct {
	entries   []func()
	revisions []revision
	nextID    int
}

func NewJournal() *Journal {
	return &Journal{}
}

// Append registers the closure restoring the state as it was before
// the mutation being applied.
func (j *Journal) Append(undo func()) {
	if j == nil {
		return
	}
	j.entries = append(j.entries, undo)
}

// Snapshot returns an identifier for the current state.
func (j *Journal) Snapshot() int {
	id := j.nextID
	j.nextID++
	j.revisions = append(j.revisions, revision{id: id, index: len(j.entries)})
	return id
}

// RevertToSnapshot undoes every mutation recorded after the snapshot was
// taken, most recent first. Inner snapshots are discarded.
func (j *Journal) RevertToSnapshot(id int) {
	idx := sort.Search(len(j.revisions), func(i int) bool {
		return j.revisions[i].id >= id
	})
	if idx == len(j.revisions) || j.revisions[idx].id != id {
		panic(fmt.Errorf("revision id %v cannot be reverted", id))
	}
	index := j.revisions[idx].index
	for i := len(j.entries) - 1; i >= index; i-- {
		j.entries[i]()
		j.entries[i] = nil
	}
	j.entries = j.entries[:index]
	j.revisions = j.revisions[:idx]
}

// Reset drops every recorded entry, making the current state final.
func (j *Journal) Reset() {
	j.entries = j.entries[:0]
	j.revisions = j.revisions[:0]
}

// Len is the number of undo entries recorded.
func (j *Journal) Len() int {
	return len(j.entries)
}
