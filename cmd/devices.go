package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smazurov/pcmcap/pkg/linuxav/alsa"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List ALSA capture devices",
		Long:  `Enumerates sound cards and reports each capture device with the rates, channel counts, formats and buffer sizes it accepts in mmap mode.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := listDevices()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(devices)
			}
			printDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print devices as JSON")
	return cmd
}

func printDevices(w io.Writer, devices []alsa.Device) {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No ALSA capture devices found.")
		return
	}

	fmt.Fprintf(w, "Found %d ALSA capture devices:\n", len(devices))
	for i, dev := range devices {
		fmt.Fprintf(w, "%d. %s: %s (%s)\n", i+1, dev.ALSADevice, dev.DeviceName, dev.CardName)
		fmt.Fprintf(w, "   Card: %d (%s)  Device: %d\n", dev.CardNumber, dev.CardID, dev.DeviceNumber)
		if dev.MaxChannels > 0 {
			fmt.Fprintf(w, "   Channels: %d-%d\n", dev.MinChannels, dev.MaxChannels)
		}
		if len(dev.SupportedRates) > 0 {
			fmt.Fprintf(w, "   Rates: %s\n", joinInts(dev.SupportedRates))
		}
		if len(dev.SupportedFormats) > 0 {
			fmt.Fprintf(w, "   Formats: %s\n", strings.Join(dev.SupportedFormats, ", "))
		}
		if dev.MaxPeriodSize > 0 {
			fmt.Fprintf(w, "   Period: %d-%d frames  Buffer: %d-%d frames\n",
				dev.MinPeriodSize, dev.MaxPeriodSize, dev.MinBufferSize, dev.MaxBufferSize)
		}
		fmt.Fprintln(w)
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
