package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpoletaev/groupcast/address"
)

func addrs(n int) []address.Address {
	res := make([]address.Address, n)
	for i := range res {
		res[i] = address.UUID{byte(i + 1)}
	}

	return res
}

func TestViewID_Compare(t *testing.T) {
	a, b := addrs(2)[0], addrs(2)[1]

	tests := map[string]struct {
		x, y ViewID
		want int
	}{
		"Less":    {ViewID{a, 1}, ViewID{a, 2}, -1},
		"Greater": {ViewID{a, 3}, ViewID{a, 2}, 1},
		"Equal":   {ViewID{a, 2}, ViewID{a, 2}, 0},
		"Tie":     {ViewID{a, 5}, ViewID{b, 5}, 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.x.Compare(tt.y))
		})
	}
}

// Ordering ignores the creator: concurrent views with the same timestamp
// from different creators are indistinguishable by id.
func TestView_TieDifferentCreatorsAreEqual(t *testing.T) {
	mbrs := addrs(3)

	v1 := Create(mbrs[0], 7, mbrs...)
	v2 := Create(mbrs[1], 7, mbrs[1], mbrs[2])

	assert.True(t, v1.Equal(v2))
	assert.False(t, v1.DeepEqual(v2))
	assert.True(t, SameViews(v1, v2))
}

func TestView_Accessors(t *testing.T) {
	mbrs := addrs(3)
	v := Create(mbrs[0], 1, mbrs...)

	assert.Equal(t, mbrs[0], v.Coordinator())
	assert.Equal(t, mbrs[0], v.Creator())
	assert.Equal(t, 3, v.Size())
	assert.True(t, v.Contains(mbrs[2]))
	assert.True(t, v.ContainsAll(mbrs[1], mbrs[2]))
	assert.False(t, v.Contains(address.UUID{99}))
	assert.False(t, v.IsMergeView())

	members := v.Members()
	members[0] = nil
	assert.Equal(t, mbrs[0], v.Coordinator())

	assert.Nil(t, Create(nil, 1).Coordinator())
}

func TestDiff(t *testing.T) {
	a := addrs(4)
	from := Create(a[0], 1, a[0], a[1], a[2])
	to := Create(a[0], 2, a[0], a[2], a[3])

	joined, left := Diff(from, to)
	assert.Equal(t, []address.Address{a[3]}, joined)
	assert.Equal(t, []address.Address{a[1]}, left)

	joined, left = Diff(nil, to)
	assert.Equal(t, to.Members(), joined)
	assert.Empty(t, left)

	joined, left = Diff(to, to)
	assert.Empty(t, joined)
	assert.Empty(t, left)

	assert.Equal(t, []address.Address{a[1]}, LeftMembers(from, to))
	assert.Equal(t, []address.Address{a[3]}, NewMembers(from, to))
	assert.Nil(t, LeftMembers(nil, to))
}

func TestSameMembers(t *testing.T) {
	a := addrs(3)
	v1 := Create(a[0], 1, a[0], a[1], a[2])
	v2 := Create(a[1], 2, a[1], a[0], a[2])
	v3 := Create(a[0], 3, a[0], a[1])

	assert.True(t, SameMembers(v1, v2))
	assert.False(t, SameMembersOrdered(v1, v2))
	assert.True(t, SameMembersOrdered(v1, v1))
	assert.False(t, SameMembers(v1, v3))
	assert.False(t, SameViews(v1, v2))
}

func TestView_RoundTrip(t *testing.T) {
	reg := address.NewRegistry()
	a := addrs(4)

	tests := map[string]*View{
		"Regular": Create(a[0], 3, a...),
		"Empty":   Create(a[0], 1),
		"Merge": NewMergeView(ViewID{a[0], 10}, a, []*View{
			Create(a[0], 4, a[0], a[1]),
			Create(a[2], 6, a[2], a[3]),
		}),
		"NestedMerge": NewMergeView(ViewID{a[0], 20}, a, []*View{
			NewMergeView(ViewID{a[0], 11}, a[:3], []*View{
				Create(a[0], 4, a[0], a[1]),
				Create(a[2], 5, a[2]),
			}),
			Create(a[3], 7, a[3]),
		}),
	}

	for name, v := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, v.SerializedSize(), len(data))

			got, err := Unmarshal(data, reg)
			require.NoError(t, err)

			assert.True(t, v.DeepEqual(got))
			assert.Equal(t, v.ID().Creator, got.ID().Creator)
			assert.Equal(t, v.IsMergeView(), got.IsMergeView())
			assert.Equal(t, v.String(), got.String())
			assert.Equal(t, v.Hash(), got.Hash())
		})
	}
}

func TestView_Hash(t *testing.T) {
	a := addrs(3)

	assert.Equal(t, Create(a[0], 1, a...).Hash(), Create(a[1], 2, a...).Hash())
	assert.NotEqual(t, Create(a[0], 1, a...).Hash(), Create(a[0], 1, a[0], a[2], a[1]).Hash())
}

func TestView_String(t *testing.T) {
	a := addrs(2)
	v := Create(a[0], 3, a...)

	assert.Equal(t, "["+a[0].String()+"|3] (2) ["+a[0].String()+", "+a[1].String()+"]", v.String())
}

func TestUnmarshal_Malformed(t *testing.T) {
	reg := address.NewRegistry()
	a := addrs(3)

	merge, err := Marshal(NewMergeView(ViewID{a[0], 5}, a, []*View{}))
	require.NoError(t, err)

	negative := append([]byte{}, merge...)
	copy(negative[len(negative)-4:], []byte{0xff, 0xff, 0xff, 0xff})

	_, err = Unmarshal(negative, reg)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	huge := append([]byte{}, merge...)
	copy(huge[len(huge)-4:], []byte{0x7f, 0xff, 0xff, 0xff})

	_, err = Unmarshal(huge, reg)
	assert.Error(t, err)

	got, err := Unmarshal(merge, reg)
	require.NoError(t, err)
	assert.True(t, got.IsMergeView())
	assert.Empty(t, got.Subgroups())
}

func TestUnmarshal_Truncated(t *testing.T) {
	reg := address.NewRegistry()
	a := addrs(4)

	v := NewMergeView(ViewID{a[0], 10}, a, []*View{
		Create(a[0], 4, a[0], a[1]),
		Create(a[2], 6, a[2], a[3]),
	})

	data, err := Marshal(v)
	require.NoError(t, err)

	for n := 0; n < len(data); n++ {
		_, err := Unmarshal(data[:n], reg)
		require.Error(t, err, "prefix of %d bytes", n)
	}
}
