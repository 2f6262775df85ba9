//go:build linux

package cmd

import (
	"github.com/smazurov/pcmcap/internal/capture"
	"github.com/smazurov/pcmcap/internal/logging"
	"github.com/smazurov/pcmcap/pkg/linuxav/alsa"
)

// openDevice opens an ALSA hardware PCM for a capture session.
func openDevice(p capture.DeviceParams) (capture.Device, error) {
	logger := logging.GetLogger("alsa")

	format, err := alsa.ParseFormat(p.Config.Format)
	if err != nil {
		return nil, err
	}
	var flags alsa.Flag
	if p.Flags&capture.OpenCapture != 0 {
		flags |= alsa.FlagIn
	}
	if p.Flags&capture.OpenMmap != 0 {
		flags |= alsa.FlagMmap
	}

	requested := alsa.Config{
		Channels:    p.Config.Channels,
		Rate:        p.Config.Rate,
		PeriodSize:  p.Config.PeriodSize,
		PeriodCount: p.Config.PeriodCount,
		Format:      format,
	}
	pcm, err := alsa.Open(p.Card, p.Device, flags, &requested)
	if err != nil {
		return nil, err
	}

	actual := pcm.Config()
	if actual.PeriodSize != requested.PeriodSize || actual.PeriodCount != requested.PeriodCount {
		logger.Info("Driver adjusted buffering",
			"requested_period_size", requested.PeriodSize,
			"period_size", actual.PeriodSize,
			"requested_periods", requested.PeriodCount,
			"periods", actual.PeriodCount)
	}
	logger.Debug("Opened PCM",
		"device", alsa.FormatALSADevice(int(p.Card), int(p.Device)),
		"format", alsa.FormatName(actual.Format),
		"channels", actual.Channels,
		"rate", actual.Rate,
		"buffer_frames", pcm.BufferSize())
	return pcm, nil
}

func listDevices() ([]alsa.Device, error) {
	return alsa.ListDevices()
}
