package main

import (
	"context"
	"os"

	"github.com/czerwonk/pinggraph/config"
	log "github.com/sirupsen/logrus"
	"tailscale.com/client/tailscale"
)

// tsDiscover appends the devices of the tailnet to servers. Discovery
// failures leave servers unchanged.
func tsDiscover(ctx context.Context, tailnet string, servers []config.ServerConfig) []config.ServerConfig {
	tailscale.I_Acknowledge_This_API_Is_Unstable = true

	client := tailscale.NewClient(tailnet, tailscale.APIKey(os.Getenv("TS_API_KEY")))

	devices, err := client.Devices(ctx, tailscale.DeviceAllFields)
	if err != nil {
		log.Errorf("cannot discover devices of tailnet %s: %v", tailnet, err)
		return servers
	}

	return mergeDevices(servers, devices)
}

// mergeDevices adds the first address of every device not yet configured.
func mergeDevices(servers []config.ServerConfig, devices []*tailscale.Device) []config.ServerConfig {
	known := make(map[string]bool, len(servers))
	for _, s := range servers {
		known[s.Address] = true
	}

	for _, dev := range devices {
		if dev == nil || len(dev.Addresses) == 0 {
			continue
		}
		addr := dev.Addresses[0]
		if known[addr] || known[dev.Hostname] {
			continue
		}
		known[addr] = true

		log.Infof("Adding tailscale device %s (%s)", dev.Hostname, addr)
		servers = append(servers, config.NewServer(addr))
	}

	return servers
}
