package payload

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed - payload bytes that passed the frame checksum but can't be parsed
var ErrMalformed = errors.New("payload: malformed")

// Marshal serializes the payload as "key=value\n" lines in a fixed order,
// so the same payload always gives the same bytes.
func Marshal(c *Config) []byte {
	var b []byte
	put := func(key, value string) {
		b = append(b, key...)
		b = append(b, '=')
		b = append(b, value...)
		b = append(b, '\n')
	}

	put("version", strconv.Itoa(c.version))

	switch c.mode {
	case ModeRTSPServe:
		put("mode", "rtsp")
	case ModeRTMPPublish:
		put("mode", "rtmp")
	default:
		put("mode", strconv.Itoa(int(c.mode)))
	}

	if c.static != nil {
		put("ip", c.static.IP)
		put("mask", c.static.Mask)
		if c.static.Gateway != "" {
			put("gw", c.static.Gateway)
		}
		if c.static.DNS != "" {
			put("dns", c.static.DNS)
		}
	}

	if c.wifi != nil {
		put("ssid", c.wifi.SSID)
		put("psk", c.wifi.PSK)
	}

	if !c.stream.empty() {
		put("url", c.stream.URL)
		if c.stream.Key != "" {
			put("key", c.stream.Key)
		}
	}

	return b
}

// Unmarshal parses Marshal output. Unknown keys are skipped, so newer
// payload versions stay readable. The result is not validated.
func Unmarshal(b []byte) (*Config, error) {
	values := map[string]string{}

	for i, line := range bytes.Split(b, []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}

		key, value, ok := bytes.Cut(line, []byte{'='})
		if !ok || len(key) == 0 {
			return nil, fmt.Errorf("%w: line %d: no key", ErrMalformed, i+1)
		}

		if _, ok = values[string(key)]; ok {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrMalformed, key)
		}

		values[string(key)] = string(value)
	}

	version, err := strconv.Atoi(values["version"])
	if err != nil || version < 1 {
		return nil, fmt.Errorf("%w: bad version %q", ErrMalformed, values["version"])
	}

	c := &Config{version: version}

	switch values["mode"] {
	case "rtsp":
		c.mode = ModeRTSPServe
	case "rtmp":
		c.mode = ModeRTMPPublish
	default:
		return nil, fmt.Errorf("%w: bad mode %q", ErrMalformed, values["mode"])
	}

	if ip, ok := values["ip"]; ok {
		c.static = &StaticIP{IP: ip, Mask: values["mask"], Gateway: values["gw"], DNS: values["dns"]}
	}

	if ssid, ok := values["ssid"]; ok {
		c.wifi = &WiFi{SSID: ssid, PSK: values["psk"]}
	}

	if u, ok := values["url"]; ok {
		c.stream = &Endpoint{URL: u, Key: values["key"]}
	}

	return c, nil
}
