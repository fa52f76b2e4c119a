package message

import "strings"

// Flag is a persistent message flag. Persistent flags are marshalled with the
// message.
type Flag uint16

const (
	FlagOOB           Flag = 1
	FlagDontBundle    Flag = 1 << 1
	FlagNoFC          Flag = 1 << 2
	FlagNoReliability Flag = 1 << 4
	FlagNoTotalOrder  Flag = 1 << 5
	FlagNoRelay       Flag = 1 << 6
	FlagRSVP          Flag = 1 << 7
	FlagRSVPNB        Flag = 1 << 8
	FlagSkipBarrier   Flag = 1 << 9
	FlagSerialized    Flag = 1 << 10
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagOOB, "OOB"},
	{FlagDontBundle, "DONT_BUNDLE"},
	{FlagNoFC, "NO_FC"},
	{FlagNoReliability, "NO_RELIABILITY"},
	{FlagNoTotalOrder, "NO_TOTAL_ORDER"},
	{FlagNoRelay, "NO_RELAY"},
	{FlagRSVP, "RSVP"},
	{FlagRSVPNB, "RSVP_NB"},
	{FlagSkipBarrier, "SKIP_BARRIER"},
	{FlagSerialized, "SERIALIZED"},
}

func (f Flag) String() string {
	var names []string

	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}

	return strings.Join(names, "|")
}

// TransientFlag is a process-local message flag. Transient flags are never
// marshalled and are not carried over by Copy.
type TransientFlag uint8

const (
	TransientOOBDelivered TransientFlag = 1
	TransientDontLoopback TransientFlag = 1 << 1
	TransientDontBlock    TransientFlag = 1 << 2
)

func (f TransientFlag) String() string {
	var names []string

	if f&TransientOOBDelivered != 0 {
		names = append(names, "OOB_DELIVERED")
	}

	if f&TransientDontLoopback != 0 {
		names = append(names, "DONT_LOOPBACK")
	}

	if f&TransientDontBlock != 0 {
		names = append(names, "DONT_BLOCK")
	}

	return strings.Join(names, "|")
}
