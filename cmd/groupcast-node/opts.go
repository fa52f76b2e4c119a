package main

import (
	"strings"
)

var opts struct {
	Node struct {
		Name string `long:"name" env:"NAME" description:"logical node name, generated when empty"`
	} `group:"node" namespace:"node" env-namespace:"NODE"`

	Gossip struct {
		BindAddr      string `long:"bind-addr" description:"address to bind gossip listener" env:"BIND_ADDR" default:"0.0.0.0"`
		BindPort      int    `long:"bind-port" description:"port to bind gossip listener" env:"BIND_PORT" default:"7946"`
		AdvertiseAddr string `long:"advertise-addr" description:"address to advertise to other nodes" env:"ADVERTISE_ADDR"`
		AdvertisePort int    `long:"advertise-port" description:"port to advertise to other nodes" env:"ADVERTISE_PORT"`
	} `group:"gossip" namespace:"gossip" env-namespace:"GOSSIP"`

	Cluster struct {
		Name          string `long:"name" description:"cluster to join" env:"NAME" default:"chat"`
		JoinAddrs     string `long:"join-addrs" description:"comma-separated list of gossip addresses to join" env:"JOIN_ADDRS"`
		StateTimeout  int    `long:"state-timeout" description:"state transfer timeout (ms)" env:"STATE_TIMEOUT" default:"5000"`
		DiscardOwn    bool   `long:"discard-own" description:"do not deliver own messages" env:"DISCARD_OWN"`
		HistoryLength int    `long:"history-length" description:"number of chat lines kept as state" env:"HISTORY_LENGTH" default:"100"`
	} `group:"cluster" namespace:"cluster" env-namespace:"CLUSTER"`

	RestAPI struct {
		Enabled  bool   `long:"enabled" description:"enable diagnostics api" env:"ENABLED"`
		BindAddr string `long:"bind-addr" description:"address to bind diagnostics api" env:"BIND_ADDR" default:":8000"`
	} `group:"api" namespace:"api" env-namespace:"API"`

	Verbose bool `long:"verbose" description:"verbose mode" env:"VERBOSE"`
}

func parseAddrs(addrs string) []string {
	sl := strings.Split(addrs, ",")
	res := make([]string, 0, len(sl))

	for _, addr := range sl {
		trimmed := strings.TrimSpace(addr)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}

	return res
}
