//go:build !linux

package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smazurov/pcmcap/internal/capture"
	"github.com/smazurov/pcmcap/internal/events"
	"github.com/smazurov/pcmcap/pkg/linuxav/alsa"
)

var errNoALSA = errors.New("ALSA capture is only available on Linux")

func openDevice(capture.DeviceParams) (capture.Device, error) {
	return nil, errNoALSA
}

func listDevices() ([]alsa.Device, error) {
	return nil, errNoALSA
}

func watchDevice(context.Context, *events.Bus, uint, uint, *slog.Logger) func() {
	return func() {}
}
