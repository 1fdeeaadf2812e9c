package processing

import (
	"fmt"
	"strings"
)

const (
	PRESET_NARROW = "narrow"
	PRESET_BROAD  = "broad"
)

// PresetToCommunities maps a preset name onto the subreddits searched for it.
// The narrow list sticks to general book discussion; broad adds the genre
// communities where a lot of reader chatter about SF and fantasy happens.
var PresetToCommunities = map[string][]string{
	PRESET_NARROW: {
		"books",          // 25+ million
		"suggestmeabook", // 3+ million
		"literature",
		"bookclub",
	},
	PRESET_BROAD: {
		"books",
		"suggestmeabook",
		"literature",
		"bookclub",
		"sciencefiction",
		"fantasy", // 3.5+ million
		"printSF",
	},
}

// ResolveCommunities picks the explicit community list when one is given,
// otherwise the named preset. An empty preset name means narrow.
func ResolveCommunities(explicit []string, preset string) ([]string, error) {
	var communities []string
	for _, c := range explicit {
		c = strings.TrimPrefix(strings.TrimSpace(c), "r/")
		if c != "" {
			communities = append(communities, c)
		}
	}
	if len(communities) > 0 {
		return communities, nil
	}

	if preset == "" {
		preset = PRESET_NARROW
	}
	list, ok := PresetToCommunities[strings.ToLower(preset)]
	if !ok {
		return nil, fmt.Errorf("unknown community preset %q", preset)
	}
	return append([]string(nil), list...), nil
}
