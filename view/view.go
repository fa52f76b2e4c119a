// Package view implements membership snapshots of a group.
package view

import (
	"fmt"
	"strings"

	"github.com/twmb/murmur3"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/internal/binario"
	"github.com/maxpoletaev/groupcast/internal/set"
)

const maxPrintMembers = 20

// View is an immutable, ordered snapshot of the group membership. The first
// member is the coordinator. A merge view additionally carries the views
// of the partitions it was merged from.
type View struct {
	id        ViewID
	members   []address.Address
	subgroups []*View
}

// New creates a view. The members slice is copied.
func New(id ViewID, members []address.Address) *View {
	mbrs := make([]address.Address, len(members))
	copy(mbrs, members)

	return &View{id: id, members: mbrs}
}

// Create is a shortcut for a view created by the coordinator.
func Create(coord address.Address, id int64, members ...address.Address) *View {
	return New(ViewID{Creator: coord, ID: id}, members)
}

// NewMergeView creates a view that reconciles the given subgroups.
func NewMergeView(id ViewID, members []address.Address, subgroups []*View) *View {
	v := New(id, members)
	v.subgroups = make([]*View, len(subgroups))
	copy(v.subgroups, subgroups)

	return v
}

func (v *View) ID() ViewID {
	return v.id
}

func (v *View) Creator() address.Address {
	return v.id.Creator
}

// Coordinator returns the first member, or nil for an empty view.
func (v *View) Coordinator() address.Address {
	if len(v.members) == 0 {
		return nil
	}

	return v.members[0]
}

// Members returns a copy of the member list.
func (v *View) Members() []address.Address {
	mbrs := make([]address.Address, len(v.members))
	copy(mbrs, v.members)

	return mbrs
}

func (v *View) Size() int {
	return len(v.members)
}

func (v *View) Contains(addr address.Address) bool {
	for _, m := range v.members {
		if address.Equal(m, addr) {
			return true
		}
	}

	return false
}

func (v *View) ContainsAll(addrs ...address.Address) bool {
	for _, a := range addrs {
		if !v.Contains(a) {
			return false
		}
	}

	return true
}

func (v *View) IsMergeView() bool {
	return v.subgroups != nil
}

// Subgroups returns the merged partitions of a merge view.
func (v *View) Subgroups() []*View {
	subgroups := make([]*View, len(v.subgroups))
	copy(subgroups, v.subgroups)

	return subgroups
}

// Compare orders views by their ids.
func (v *View) Compare(other *View) int {
	return v.id.Compare(other.id)
}

// Equal reports whether the views have equal ids.
func (v *View) Equal(other *View) bool {
	if v == other {
		return true
	}

	if v == nil || other == nil {
		return false
	}

	return v.Compare(other) == 0
}

// DeepEqual reports whether the views have equal ids and the same members in
// the same order.
func (v *View) DeepEqual(other *View) bool {
	return v.Equal(other) && SameMembersOrdered(v, other)
}

// Hash returns a hash of the ordered member list.
func (v *View) Hash() uint64 {
	h := murmur3.New64()
	w := binario.NewWriter(h, byteOrder)

	for _, m := range v.members {
		_ = address.Write(w, m)
	}

	return h.Sum64()
}

func (v *View) String() string {
	var sb strings.Builder

	if v.IsMergeView() {
		sb.WriteString("MergeView::")
	}

	sb.WriteString(v.id.String())
	sb.WriteString(fmt.Sprintf(" (%d) [", len(v.members)))

	for i, m := range v.members {
		if i == maxPrintMembers {
			sb.WriteString(", ...")
			break
		}

		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(m.String())
	}

	sb.WriteString("]")

	if v.IsMergeView() {
		sb.WriteString(", subgroups=")

		for i, sub := range v.subgroups {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(sub.String())
		}
	}

	return sb.String()
}

// LeftMembers returns the members of one that are not in two.
func LeftMembers(one, two *View) []address.Address {
	if one == nil || two == nil {
		return nil
	}

	return subtract(one.members, two)
}

// NewMembers returns the members of newView that were not in old.
func NewMembers(old, newView *View) []address.Address {
	if old == nil || newView == nil {
		return nil
	}

	return subtract(newView.members, old)
}

// Diff returns the members that joined and left between two views. The
// from view may be nil, in which case every member of to has joined.
func Diff(from, to *View) (joined, left []address.Address) {
	if to == nil {
		panic("view: diff against a nil view")
	}

	if from == to {
		return []address.Address{}, []address.Address{}
	}

	if from == nil {
		return to.Members(), []address.Address{}
	}

	return subtract(to.members, from), subtract(from.members, to)
}

func subtract(addrs []address.Address, v *View) []address.Address {
	return set.New(v.members...).Filter(addrs)
}

// SameViews reports whether all views have equal ids.
func SameViews(views ...*View) bool {
	if len(views) == 0 {
		return true
	}

	for _, v := range views[1:] {
		if !views[0].Equal(v) {
			return false
		}
	}

	return true
}

// SameMembers reports whether the views have the same members regardless
// of their order.
func SameMembers(v1, v2 *View) bool {
	if v1 == v2 {
		return true
	}

	if v1.Size() != v2.Size() {
		return false
	}

	joined, left := Diff(v1, v2)

	return len(joined) == 0 && len(left) == 0
}

// SameMembersOrdered reports whether the views have the same members in the
// same order.
func SameMembersOrdered(v1, v2 *View) bool {
	if len(v1.members) != len(v2.members) {
		return false
	}

	for i := range v1.members {
		if !address.Equal(v1.members[i], v2.members[i]) {
			return false
		}
	}

	return true
}
