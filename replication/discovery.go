package replication

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const ServiceType = "_brushtoy._tcp"

var ErrNoRelay = errors.New("replication: no relay found")

// Advertise announces a relay listening on port over mDNS. Shut the returned
// server down when the relay stops.
func Advertise(port int, info ...string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("advertise: hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"brushtoy relay"}
	}
	service, err := mdns.NewMDNSService(host, ServiceType, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("advertise: service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("advertise: server: %w", err)
	}
	return server, nil
}

// Discover returns the websocket URL of the first relay that answers within
// timeout.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errc := make(chan error, 1)
	go func() {
		errc <- mdns.Query(params)
		close(entries)
	}()

	for {
		select {
		case e, ok := <-entries:
			if !ok {
				if err := <-errc; err != nil {
					return "", fmt.Errorf("discover: %w", err)
				}
				return "", ErrNoRelay
			}
			if url := RelayURL(e); url != "" {
				go drain(entries)
				return url, nil
			}
		case <-ctx.Done():
			go drain(entries)
			return "", ctx.Err()
		}
	}
}

// RelayURL builds the websocket endpoint of a discovered relay.
func RelayURL(e *mdns.ServiceEntry) string {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return ""
	}
	return fmt.Sprintf("ws://%s:%d/ws", e.AddrV4.String(), e.Port)
}

func drain(entries <-chan *mdns.ServiceEntry) {
	for range entries {
	}
}
