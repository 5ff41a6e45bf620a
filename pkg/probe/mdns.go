package probe

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const DefaultService = "_rtsp._tcp"

type Device struct {
	Name string   `json:"name"`
	Host string   `json:"host"`
	Addr net.IP   `json:"addr"`
	Port int      `json:"port"`
	Info []string `json:"info,omitempty"`
}

// URL of the device stream, scheme is taken from the service name
func (d *Device) URL() string {
	scheme := "rtsp"
	if strings.Contains(d.Name, "._rtmp.") {
		scheme = "rtmp"
	}
	return scheme + "://" + net.JoinHostPort(d.Addr.String(), strconv.Itoa(d.Port)) + "/"
}

// Discover browses the local network, useful for devices provisioned with DHCP
func Discover(ctx context.Context, service string, timeout time.Duration) ([]*Device, error) {
	if service == "" {
		service = DefaultService
	}

	entries := make(chan *mdns.ServiceEntry, 16)

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	errs := make(chan error, 1)
	go func() {
		errs <- mdns.Query(params)
		close(entries)
	}()

	var devices []*Device
	seen := map[string]bool{}

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return devices, <-errs
			}
			if d := fromEntry(entry); d != nil && !seen[d.URL()] {
				seen[d.URL()] = true
				devices = append(devices, d)
			}
		case <-ctx.Done():
			go func() {
				for range entries {
				}
			}()
			return devices, ctx.Err()
		}
	}
}

func fromEntry(entry *mdns.ServiceEntry) *Device {
	if entry == nil || entry.AddrV4 == nil || entry.Port == 0 {
		return nil
	}
	return &Device{
		Name: entry.Name,
		Host: entry.Host,
		Addr: entry.AddrV4,
		Port: entry.Port,
		Info: entry.InfoFields,
	}
}
