// Package payload - configuration that is provisioned to the device over audio.
//
// Config is immutable: build a new one from a Spec to change anything.
package payload

import (
	"fmt"
	"strings"
)

// Version - current payload format version
const Version = 1

type Mode byte

const (
	ModeRTSPServe   Mode = iota + 1 // device serves rtsp://<ip>/
	ModeRTMPPublish                 // device pushes to the stream endpoint
)

func (m Mode) String() string {
	switch m {
	case ModeRTSPServe:
		return "rtsp_serve"
	case ModeRTMPPublish:
		return "rtmp_publish"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeRTSPServe && m != ModeRTMPPublish {
		return nil, fmt.Errorf("payload: unknown mode %d", byte(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMode(string(text))
	return
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "rtsp", "rtsp_serve", "rtsp-serve":
		return ModeRTSPServe, nil
	case "rtmp", "rtmp_publish", "rtmp-publish":
		return ModeRTMPPublish, nil
	}
	return 0, fmt.Errorf("payload: unknown mode %q", s)
}

type StaticIP struct {
	IP      string `yaml:"ip" json:"ip"`
	Mask    string `yaml:"mask" json:"mask"`
	Gateway string `yaml:"gateway,omitempty" json:"gateway,omitempty"`
	DNS     string `yaml:"dns,omitempty" json:"dns,omitempty"`
}

type WiFi struct {
	SSID string `yaml:"ssid" json:"ssid"`
	PSK  string `yaml:"psk,omitempty" json:"psk,omitempty"`
}

type Endpoint struct {
	URL string `yaml:"url" json:"url"`
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
}

func (e *Endpoint) empty() bool {
	return e == nil || (e.URL == "" && e.Key == "")
}

type Network struct {
	Static *StaticIP `yaml:"static,omitempty" json:"static,omitempty"`
	WiFi   *WiFi     `yaml:"wifi,omitempty" json:"wifi,omitempty"`
}

// Spec - mutable description of a payload, the shape of payload files and API bodies
type Spec struct {
	Version int       `yaml:"version,omitempty" json:"version,omitempty"`
	Mode    Mode      `yaml:"mode" json:"mode"`
	Network Network   `yaml:"network" json:"network"`
	Stream  *Endpoint `yaml:"stream,omitempty" json:"stream,omitempty"`
}

type Config struct {
	version int
	mode    Mode
	static  *StaticIP
	wifi    *WiFi
	stream  *Endpoint
}

// New copies spec into a Config. No checks are made, see Validate.
func New(spec Spec) *Config {
	c := &Config{
		version: spec.Version,
		mode:    spec.Mode,
	}
	if c.version == 0 {
		c.version = Version
	}
	if spec.Network.Static != nil {
		static := *spec.Network.Static
		c.static = &static
	}
	if spec.Network.WiFi != nil {
		wifi := *spec.Network.WiFi
		c.wifi = &wifi
	}
	if spec.Stream != nil {
		stream := *spec.Stream
		c.stream = &stream
	}
	return c
}

// Build returns a validated Config
func Build(spec Spec) (*Config, error) {
	c := New(spec)
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Version() int {
	return c.version
}

func (c *Config) Mode() Mode {
	return c.mode
}

func (c *Config) StaticIP() (StaticIP, bool) {
	if c.static == nil {
		return StaticIP{}, false
	}
	return *c.static, true
}

func (c *Config) WiFi() (WiFi, bool) {
	if c.wifi == nil {
		return WiFi{}, false
	}
	return *c.wifi, true
}

func (c *Config) Endpoint() (Endpoint, bool) {
	if c.stream.empty() {
		return Endpoint{}, false
	}
	return *c.stream, true
}

// Spec returns a copy that can be changed and passed to New
func (c *Config) Spec() Spec {
	spec := Spec{Version: c.version, Mode: c.mode}
	if static, ok := c.StaticIP(); ok {
		spec.Network.Static = &static
	}
	if wifi, ok := c.WiFi(); ok {
		spec.Network.WiFi = &wifi
	}
	if stream, ok := c.Endpoint(); ok {
		spec.Stream = &stream
	}
	return spec
}

// RTSPURL - where the device serves its stream after RTSP provisioning.
// Empty when the address is not known in advance (Wi-Fi with DHCP).
func (c *Config) RTSPURL() string {
	if c.mode != ModeRTSPServe || c.static == nil || c.static.IP == "" {
		return ""
	}
	return "rtsp://" + c.static.IP + "/"
}

// Equal compares payloads by value
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}
	return string(Marshal(c)) == string(Marshal(other))
}

// String hides secrets, safe for logs
func (c *Config) String() string {
	s := fmt.Sprintf("v%d %s", c.version, c.mode)
	if c.static != nil {
		s += " ip=" + c.static.IP
	}
	if c.wifi != nil {
		s += " ssid=" + c.wifi.SSID
	}
	if !c.stream.empty() {
		s += " url=" + c.stream.URL
		if c.stream.Key != "" {
			s += " key=***"
		}
	}
	return s
}
