package waffles

import "fmt"

// UniqueChannel identifies one photon-detector readout channel: the endpoint
// is the hardware readout-unit number and the channel is the index within
// that endpoint. It is a value type; two UniqueChannel values are the same
// physical channel iff they are ==.
type UniqueChannel struct {
	Endpoint int
	Channel  int
}

// String renders the channel in the "endpoint-channel" form used in map
// files and plot labels, e.g. "105-3".
func (uc UniqueChannel) String() string {
	return fmt.Sprintf("%d-%d", uc.Endpoint, uc.Channel)
}

// ParseUniqueChannel parses the "endpoint-channel" form produced by String.
func ParseUniqueChannel(s string) (UniqueChannel, error) {
	var uc UniqueChannel
	if n, err := fmt.Sscanf(s, "%d-%d", &uc.Endpoint, &uc.Channel); n != 2 || err != nil {
		return UniqueChannel{}, fmt.Errorf("cannot parse '%s' as endpoint-channel", s)
	}
	if uc.Endpoint < 0 || uc.Channel < 0 {
		return UniqueChannel{}, fmt.Errorf("endpoint and channel must be non-negative, got '%s'", s)
	}
	return uc, nil
}
