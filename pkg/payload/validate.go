package payload

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

const (
	MaxSSIDLength      = 32
	MinPSKLength       = 8
	MaxPSKLength       = 63
	MaxURLLength       = 255
	MaxStreamKeyLength = 255
)

type Kind byte

const (
	KindInconsistentFields Kind = iota + 1
	KindFieldTooLong
	KindInvalidField
)

var (
	ErrInconsistentFields = errors.New("payload: inconsistent fields")
	ErrFieldTooLong       = errors.New("payload: field too long")
	ErrInvalidField       = errors.New("payload: invalid field")
)

func (k Kind) String() string {
	switch k {
	case KindInconsistentFields:
		return "InconsistentFields"
	case KindFieldTooLong:
		return "FieldTooLong"
	case KindInvalidField:
		return "InvalidField"
	}
	return "Unknown"
}

// ValidationError names the violated rule, check it with errors.Is(err, ErrFieldTooLong) etc.
type ValidationError struct {
	Kind  Kind
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("payload: %s: %s: %s", e.Kind, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindInconsistentFields:
		return ErrInconsistentFields
	case KindFieldTooLong:
		return ErrFieldTooLong
	}
	return ErrInvalidField
}

func inconsistent(field, msg string) error {
	return &ValidationError{Kind: KindInconsistentFields, Field: field, Msg: msg}
}

func invalid(field, format string, a ...any) error {
	return &ValidationError{Kind: KindInvalidField, Field: field, Msg: fmt.Sprintf(format, a...)}
}

func tooLong(field string, size, limit int) error {
	return &ValidationError{
		Kind: KindFieldTooLong, Field: field, Msg: fmt.Sprintf("%d bytes, max %d", size, limit),
	}
}

// Validate checks the payload before it goes to the encoder. Pure function.
func Validate(c *Config) error {
	if c == nil {
		return invalid("payload", "empty")
	}

	if c.version < 1 {
		return invalid("version", "must be >= 1, got %d", c.version)
	}

	if c.mode != ModeRTSPServe && c.mode != ModeRTMPPublish {
		return invalid("mode", "must be rtsp_serve or rtmp_publish")
	}

	switch {
	case c.static != nil && c.wifi != nil:
		return inconsistent("network", "both static and wifi are set")
	case c.static == nil && c.wifi == nil:
		return inconsistent("network", "neither static nor wifi is set")
	}

	switch {
	case c.mode == ModeRTMPPublish && c.stream.empty():
		return inconsistent("stream", "required for rtmp_publish")
	case c.mode == ModeRTSPServe && !c.stream.empty():
		// the device firmware behaviour is unknown here, so reject instead of dropping the field
		return inconsistent("stream", "not allowed for rtsp_serve")
	}

	if c.static != nil {
		if err := validateStatic(c.static); err != nil {
			return err
		}
	} else if err := validateWiFi(c.wifi); err != nil {
		return err
	}

	if c.mode == ModeRTMPPublish {
		return validateEndpoint(c.stream)
	}

	return nil
}

func validateStatic(s *StaticIP) error {
	ip, err := parseIPv4("network.static.ip", s.IP, true)
	if err != nil {
		return err
	}

	mask, err := parseIPv4("network.static.mask", s.Mask, true)
	if err != nil {
		return err
	}

	b := mask.As4()
	ones, bits := net.IPv4Mask(b[0], b[1], b[2], b[3]).Size()
	if bits == 0 || ones == 0 {
		return invalid("network.static.mask", "not a contiguous netmask: %s", s.Mask)
	}

	prefix := netip.PrefixFrom(ip, ones).Masked()

	if gw, err := parseIPv4("network.static.gateway", s.Gateway, false); err != nil {
		return err
	} else if gw.IsValid() && !prefix.Contains(gw) {
		return inconsistent("network.static.gateway", fmt.Sprintf("%s outside of %s", gw, prefix))
	}

	_, err = parseIPv4("network.static.dns", s.DNS, false)
	return err
}

func parseIPv4(field, s string, required bool) (netip.Addr, error) {
	if s == "" {
		if required {
			return netip.Addr{}, invalid(field, "required")
		}
		return netip.Addr{}, nil
	}

	addr, err := netip.ParseAddr(s)
	if err != nil || !addr.Is4() {
		return netip.Addr{}, invalid(field, "not an IPv4 address: %q", s)
	}

	return addr, nil
}

func validateWiFi(w *WiFi) error {
	if w.SSID == "" {
		return invalid("network.wifi.ssid", "required")
	}
	if len(w.SSID) > MaxSSIDLength {
		return tooLong("network.wifi.ssid", len(w.SSID), MaxSSIDLength)
	}
	if err := printable("network.wifi.ssid", w.SSID); err != nil {
		return err
	}

	// empty PSK means open network
	if len(w.PSK) > MaxPSKLength {
		return tooLong("network.wifi.psk", len(w.PSK), MaxPSKLength)
	}
	if w.PSK != "" && len(w.PSK) < MinPSKLength {
		return invalid("network.wifi.psk", "%d bytes, min %d", len(w.PSK), MinPSKLength)
	}
	return printable("network.wifi.psk", w.PSK)
}

func validateEndpoint(e *Endpoint) error {
	if e.URL == "" {
		return invalid("stream.url", "required")
	}
	if len(e.URL) > MaxURLLength {
		return tooLong("stream.url", len(e.URL), MaxURLLength)
	}
	if err := printable("stream.url", e.URL); err != nil {
		return err
	}

	u, err := url.Parse(e.URL)
	if err != nil {
		return invalid("stream.url", "%v", err)
	}
	if u.Scheme != "rtmp" && u.Scheme != "rtmps" {
		return invalid("stream.url", "unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return invalid("stream.url", "no host")
	}

	if len(e.Key) > MaxStreamKeyLength {
		return tooLong("stream.key", len(e.Key), MaxStreamKeyLength)
	}
	return printable("stream.key", e.Key)
}

// printable - values are sent as text lines, so no control chars
func printable(field, s string) error {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c == 0x7F {
			return invalid(field, "control character at %d", i)
		}
	}
	return nil
}
