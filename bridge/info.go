// File: bridge/info.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package bridge

// Version is the bridge release.
const Version = "0.1.0"

// Info is the static plugin description offered to hosts.
type Info struct {
	Name           string
	Vendor         string
	URL            string
	Email          string
	Version        string
	ClapID         string
	Description    string
	Features       []string
	InputChannels  uint32
	OutputChannels uint32
}

// PluginInfo describes the bridge.
func PluginInfo() Info {
	return Info{
		Name:           "Space Radio",
		Vendor:         "@micahscopes",
		URL:            "https://wondering.xyz",
		Email:          "micahscopes@gmail.com",
		Version:        Version,
		ClapID:         "xyz.wondering.space-radio",
		Description:    "OSC broadcaster",
		Features:       []string{"utility", "instrument"},
		InputChannels:  0,
		OutputChannels: 1,
	}
}
