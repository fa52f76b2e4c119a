package view

import (
	"fmt"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
)

// ViewID is the logical timestamp of a view together with the member that
// created it.
type ViewID struct {
	Creator address.Address
	ID      int64
}

// Compare orders view ids by their logical timestamp only. Two ids with the
// same timestamp compare as equal even if their creators differ.
func (v ViewID) Compare(other ViewID) int {
	switch {
	case v.ID < other.ID:
		return -1
	case v.ID > other.ID:
		return 1
	default:
		return 0
	}
}

// Equal reports whether the ids have the same logical timestamp.
func (v ViewID) Equal(other ViewID) bool {
	return v.Compare(other) == 0
}

func (v ViewID) String() string {
	creator := "<nil>"
	if v.Creator != nil {
		creator = v.Creator.String()
	}

	return fmt.Sprintf("[%s|%d]", creator, v.ID)
}

func (v ViewID) size() int {
	return address.Size(v.Creator) + 8
}

func (v ViewID) writeTo(w *binario.Writer) error {
	if err := address.Write(w, v.Creator); err != nil {
		return err
	}

	return w.WriteInt64(v.ID)
}

func readViewID(r *binario.Reader, reg *address.Registry) (ViewID, error) {
	creator, err := reg.Read(r)
	if err != nil {
		return ViewID{}, err
	}

	id, err := r.ReadInt64()
	if err != nil {
		return ViewID{}, err
	}

	return ViewID{Creator: creator, ID: id}, nil
}
