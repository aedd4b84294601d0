// internal/repo/state.go
package repo

import (
	"fmt"

	"github.com/mstvb/forge/internal/index"
)

// State is the mutable repository state of one command: loaded when the
// command starts and written back when it ends.
type State struct {
	Index index.Index
	Head  string

	head string
}

func (r *Repository) LoadState() (*State, error) {
	ix, err := r.Index.Load()
	if err != nil {
		return nil, err
	}
	head, err := r.Chain.Head()
	if err != nil {
		return nil, err
	}
	return &State{Index: ix, Head: head, head: head}, nil
}

// SaveState replaces the index with st.Index and moves HEAD if it changed.
func (r *Repository) SaveState(st *State) error {
	if err := r.Index.Save(st.Index); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}
	if st.Head != st.head {
		if err := r.Chain.SetHead(st.Head); err != nil {
			return err
		}
		st.head = st.Head
	}
	return nil
}
