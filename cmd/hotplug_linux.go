//go:build linux

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/pcmcap/internal/events"
	"github.com/smazurov/pcmcap/pkg/linuxav/hotplug"
)

// watchDevice reports removal of the capture PCM node hw:card,device on bus
// until the returned stop function is called. Without uevent access it only
// logs and returns a no-op.
func watchDevice(ctx context.Context, bus *events.Bus, card, device uint, logger *slog.Logger) func() {
	monitor, err := hotplug.NewMonitor()
	if err != nil {
		logger.Debug("Hotplug monitoring unavailable", "error", err)
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer monitor.Close()
		err := monitor.Run(ctx, func(ev hotplug.Event) {
			if !isCaptureRemoval(ev, card, device) {
				return
			}
			logger.Warn("Capture device removed", "dev_name", ev.DevName, "card", card, "device", device)
			bus.Publish(events.DeviceRemovedEvent{
				Card:      int(card),
				Device:    int(device),
				DevName:   ev.DevName,
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Hotplug monitor stopped", "error", err)
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func isCaptureRemoval(ev hotplug.Event, card, device uint) bool {
	if ev.Action != hotplug.ActionRemove {
		return false
	}
	c, d, capture, ok := ev.PCM()
	return ok && capture && c == int(card) && d == int(device)
}
