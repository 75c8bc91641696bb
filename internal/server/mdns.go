package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

// DefaultService is the mDNS service type the server advertises.
const DefaultService = "_artseq._tcp"

// Advertise announces the server on the local network. Close the returned
// server to withdraw the announcement.
func Advertise(service string, port int, info ...string) (*mdns.Server, error) {
	if service == "" {
		service = DefaultService
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	if len(info) == 0 {
		info = []string{"Artwork Sequencer"}
	}

	svc, err := mdns.NewMDNSService(host, service, "", "", port, nil, info)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: svc})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Peer is a sequencer server found on the local network.
type Peer struct {
	Name string
	Addr string
	Info []string
}

// Browse queries the local network for servers for up to timeout.
func Browse(service string, timeout time.Duration) ([]Peer, error) {
	if service == "" {
		service = DefaultService
	}
	entries := make(chan *mdns.ServiceEntry, 16)
	var peers []Peer
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			peers = append(peers, Peer{
				Name: e.Name,
				Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port),
				Info: e.InfoFields,
			})
		}
	}()

	params := mdns.DefaultParams(service)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mDNS query: %w", err)
	}
	return peers, nil
}
