//go:build linux

package cmd

import (
	"testing"

	"github.com/smazurov/pcmcap/pkg/linuxav/hotplug"
)

func TestIsCaptureRemoval(t *testing.T) {
	tests := []struct {
		name string
		ev   hotplug.Event
		want bool
	}{
		{"matching capture node", hotplug.Event{Action: "remove", DevName: "snd/pcmC2D0c"}, true},
		{"added", hotplug.Event{Action: "add", DevName: "snd/pcmC2D0c"}, false},
		{"playback node", hotplug.Event{Action: "remove", DevName: "snd/pcmC2D0p"}, false},
		{"other card", hotplug.Event{Action: "remove", DevName: "snd/pcmC1D0c"}, false},
		{"other device", hotplug.Event{Action: "remove", DevName: "snd/pcmC2D1c"}, false},
		{"control node", hotplug.Event{Action: "remove", DevName: "snd/controlC2"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCaptureRemoval(tt.ev, 2, 0); got != tt.want {
				t.Errorf("isCaptureRemoval() = %v, want %v", got, tt.want)
			}
		})
	}
}
