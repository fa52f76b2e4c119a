package api

//go:generate mockgen -source=facilities.go -destination=mocks.go -package=api

import (
	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/view"
)

type Channel interface {
	Address() address.Address
	Name() string
	ClusterName() string
	State() channel.State
	View() *view.View
	Stats() channel.Stats
	NameCache() *address.NameCache
}
