package address

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/twmb/murmur3"

	"github.com/maxpoletaev/groupcast/internal/binario"
)

const uuidSize = 16

// UUID is a random 128-bit member address.
type UUID uuid.UUID

var _ Address = UUID{}

// NewUUID generates a fresh random address.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID parses the canonical textual form of a UUID address.
func ParseUUID(s string) (UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid uuid address: %w", err)
	}

	return UUID(u), nil
}

func (u UUID) Kind() Kind {
	return KindUUID
}

func (u UUID) Compare(other Address) int {
	o, ok := other.(UUID)
	if !ok {
		if u.Kind() < other.Kind() {
			return -1
		}

		return 1
	}

	return bytes.Compare(u[:], o[:])
}

func (u UUID) Size() int {
	return uuidSize
}

func (u UUID) WriteTo(w *binario.Writer) error {
	return w.WriteRaw(u[:])
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// Hash64 returns a 64-bit hash of the address.
func (u UUID) Hash64() uint64 {
	return murmur3.Sum64(u[:])
}

func readUUID(r *binario.Reader) (Address, error) {
	bs, err := r.ReadRaw(uuidSize)
	if err != nil {
		return nil, err
	}

	var u UUID

	copy(u[:], bs)

	return u, nil
}

// GenerateName derives a human-readable logical name for the address from the
// host name and the address hash.
func GenerateName(u UUID) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}

	return fmt.Sprintf("%s-%d", host, u.Hash64()%100000)
}
