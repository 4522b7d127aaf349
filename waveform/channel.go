package waveform

import (
	"cmp"
	"fmt"
	"strings"
)

// ChannelID addresses one physical sensor channel.
type ChannelID struct {
	Network  string
	Station  string
	Location string
	Channel  string
}

// String returns the SEED-style dotted form NET.STA.LOC.CHA.
func (c ChannelID) String() string {
	return c.Network + "." + c.Station + "." + c.Location + "." + c.Channel
}

// Compare orders channel ids by network, station, location and channel code.
func (c ChannelID) Compare(o ChannelID) int {
	if r := cmp.Compare(c.Network, o.Network); r != 0 {
		return r
	}
	if r := cmp.Compare(c.Station, o.Station); r != 0 {
		return r
	}
	if r := cmp.Compare(c.Location, o.Location); r != 0 {
		return r
	}
	return cmp.Compare(c.Channel, o.Channel)
}

// IsZero reports whether no field is set.
func (c ChannelID) IsZero() bool {
	return c == ChannelID{}
}

// ParseChannelID parses NET.STA.LOC.CHA. The location code may be empty.
func ParseChannelID(s string) (ChannelID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return ChannelID{}, fmt.Errorf("%w: %q", ErrInvalidChannelID, s)
	}
	id := ChannelID{Network: parts[0], Station: parts[1], Location: parts[2], Channel: parts[3]}
	if id.Station == "" || id.Channel == "" {
		return ChannelID{}, fmt.Errorf("%w: %q", ErrInvalidChannelID, s)
	}
	return id, nil
}
