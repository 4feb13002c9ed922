// Package discovery implements LAN printer discovery over UDP broadcast.
// The scanner is a thin helper: it asks, listens for a bounded window, and
// forwards whatever answers to the fan-out.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"
)

const (
	requestMessage = "PRINTER_DISCOVERY_REQUEST"
	responseType   = "PRINTER_DISCOVERY_RESPONSE"
)

// Printer describes a device that answered a discovery broadcast.
type Printer struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IP              string `json:"ip"`
	Port            int    `json:"port"`
	FirmwareVersion string `json:"firmwareVersion,omitempty"`
}

// Broadcaster receives discovery results, typically the WebSocket hub.
type Broadcaster interface {
	PrinterDiscovered(data any)
}

// Scanner broadcasts discovery requests on every non-loopback IPv4 network.
type Scanner struct {
	port    int
	timeout time.Duration
	out     Broadcaster
	logger  zerolog.Logger
}

// NewScanner constructs a scanner broadcasting on the given UDP port.
func NewScanner(port int, timeout time.Duration, out Broadcaster, logger zerolog.Logger) *Scanner {
	return &Scanner{port: port, timeout: timeout, out: out, logger: logger}
}

// Scan sends the discovery request to every broadcast address and collects
// responses until the window closes or ctx is cancelled. Each discovered
// printer is pushed to the broadcaster as it arrives.
func (s *Scanner) Scan(ctx context.Context) error {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return fmt.Errorf("discovery: open socket: %w", err)
	}
	defer conn.Close()

	addrs, err := broadcastAddresses()
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		s.logger.Warn().Msg("discovery: no broadcast-capable interfaces")
		return nil
	}

	for _, addr := range addrs {
		dst := &net.UDPAddr{IP: addr, Port: s.port}
		if _, err := conn.WriteTo([]byte(requestMessage), dst); err != nil {
			s.logger.Error().Err(err).Stringer("addr", dst).Msg("discovery: send failed")
		}
	}

	deadline := time.Now().Add(s.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	_ = conn.SetReadDeadline(deadline)

	buf := make([]byte, 2048)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			// Deadline expiry ends the scan window normally.
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return fmt.Errorf("discovery: read: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if printer, ok := parseResponse(buf[:n], from); ok {
			s.logger.Info().Str("printer", printer.Name).Str("ip", printer.IP).Msg("printer discovered")
			s.out.PrinterDiscovered(map[string]any{"printers": []Printer{printer}})
		}
	}
}

func parseResponse(payload []byte, from net.Addr) (Printer, bool) {
	var resp struct {
		Type            string `json:"type"`
		ID              string `json:"id"`
		Name            string `json:"name"`
		Port            int    `json:"port"`
		FirmwareVersion string `json:"firmwareVersion"`
	}
	if err := json.Unmarshal(payload, &resp); err != nil || resp.Type != responseType {
		return Printer{}, false
	}
	ip := ""
	if udp, ok := from.(*net.UDPAddr); ok {
		ip = udp.IP.String()
	}
	return Printer{
		ID:              resp.ID,
		Name:            resp.Name,
		IP:              ip,
		Port:            resp.Port,
		FirmwareVersion: resp.FirmwareVersion,
	}, true
}

// broadcastAddresses derives the IPv4 broadcast address (ip | ^mask) of
// every non-loopback interface that is up.
func broadcastAddresses() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("discovery: list interfaces: %w", err)
	}

	var out []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if bcast := broadcastAddress(ipnet); bcast != nil {
				out = append(out, bcast)
			}
		}
	}
	return out, nil
}

func broadcastAddress(ipnet *net.IPNet) net.IP {
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return nil
	}
	mask := ipnet.Mask
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil
	}
	bcast := make(net.IP, net.IPv4len)
	for i := range bcast {
		bcast[i] = ip4[i] | ^mask[i]
	}
	return bcast
}
