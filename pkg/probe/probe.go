// Package probe - checks that a provisioned device answers on the network
package probe

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const DialTimeout = 5 * time.Second

const UserAgent = "tonecfg"

var ErrUnsupportedScheme = errors.New("probe: unsupported scheme")

// RTSP sends OPTIONS and waits for 200 OK
func RTSP(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	conn, err := dial(ctx, u, "554")
	if err != nil {
		return err
	}
	defer conn.Close()

	req := "OPTIONS " + u.String() + " RTSP/1.0\r\n" +
		"CSeq: 1\r\n" +
		"User-Agent: " + UserAgent + "\r\n\r\n"
	if _, err = io.WriteString(conn, req); err != nil {
		return err
	}

	tp := textproto.NewReader(bufio.NewReader(conn))

	line, err := tp.ReadLine()
	if err != nil {
		return err
	}

	proto, status, _ := strings.Cut(line, " ")
	if !strings.HasPrefix(proto, "RTSP/") {
		return fmt.Errorf("probe: not RTSP response: %q", line)
	}
	if !strings.HasPrefix(status, "200") {
		return fmt.Errorf("probe: wrong response on OPTIONS: %s", status)
	}

	_, err = tp.ReadMIMEHeader()
	return err
}

// RTMP makes simple handshake without real random and check response
func RTMP(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	conn, err := dial(ctx, u, "1935")
	if err != nil {
		return err
	}
	defer conn.Close()

	b := make([]byte, 1+1536)
	b[0] = 0x03
	// write C0+C1
	if _, err = conn.Write(b); err != nil {
		return err
	}
	// read S0+S1
	if _, err = io.ReadFull(conn, b); err != nil {
		return err
	}
	if b[0] != 0x03 {
		return fmt.Errorf("probe: wrong RTMP version %d", b[0])
	}
	// write C2 as S1 copy
	if _, err = conn.Write(b[1:]); err != nil {
		return err
	}
	// read S2, skip check
	_, err = io.ReadFull(conn, b[1:])
	return err
}

// dial - for RTSP(S|X) and RTMP(S|X), the x schemes skip certificate check
func dial(ctx context.Context, u *url.URL, port string) (net.Conn, error) {
	hostname := u.Hostname()
	address := u.Host
	if u.Port() == "" {
		address = net.JoinHostPort(hostname, port)
	}

	var secure *tls.Config

	switch u.Scheme {
	case "rtsp", "rtmp":
	case "rtsps", "rtspx", "rtmps", "rtmpx":
		if u.Scheme[4] == 'x' || net.ParseIP(hostname) != nil {
			secure = &tls.Config{InsecureSkipVerify: true}
		} else {
			secure = &tls.Config{ServerName: hostname}
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	// whole probe should fit in the dial timeout
	deadline, _ := ctx.Deadline()
	_ = conn.SetDeadline(deadline)

	if secure == nil {
		return conn, nil
	}

	tlsConn := tls.Client(conn, secure)
	if err = tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return tlsConn, nil
}
