package address

import (
	"sort"
	"strings"

	"github.com/maxpoletaev/groupcast/internal/generic"
	"github.com/maxpoletaev/groupcast/internal/set"
)

// NameCache maps addresses to logical names for display purposes. It is safe
// for concurrent use.
type NameCache struct {
	names generic.SyncMap[Address, string]
}

func NewNameCache() *NameCache {
	return &NameCache{}
}

// Add registers a logical name for the address, replacing any previous one.
func (c *NameCache) Add(addr Address, name string) {
	if addr == nil || name == "" {
		return
	}

	c.names.Store(addr, name)
}

// Get returns the logical name of the address, if known.
func (c *NameCache) Get(addr Address) (string, bool) {
	if addr == nil {
		return "", false
	}

	return c.names.Load(addr)
}

// Name returns the logical name of the address or its string form.
func (c *NameCache) Name(addr Address) string {
	if addr == nil {
		return "<all>"
	}

	if name, ok := c.names.Load(addr); ok {
		return name
	}

	return addr.String()
}

func (c *NameCache) Remove(addr Address) {
	c.names.Delete(addr)
}

// Retain removes all entries except for the given addresses.
func (c *NameCache) Retain(keep []Address) {
	keepSet := set.New(keep...)

	c.names.Range(func(addr Address, _ string) bool {
		if !keepSet.Has(addr) {
			c.names.Delete(addr)
		}

		return true
	})
}

func (c *NameCache) Len() int {
	n := 0

	c.names.Range(func(Address, string) bool {
		n++
		return true
	})

	return n
}

// Print returns a listing of the cache sorted by address.
func (c *NameCache) Print() string {
	type entry struct {
		addr Address
		name string
	}

	var entries []entry

	c.names.Range(func(addr Address, name string) bool {
		entries = append(entries, entry{addr, name})
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].addr.Compare(entries[j].addr) < 0
	})

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.addr.String())
		sb.WriteString(": ")
		sb.WriteString(e.name)
		sb.WriteString("\n")
	}

	return sb.String()
}
