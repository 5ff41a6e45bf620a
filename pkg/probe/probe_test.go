package probe

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/require"
)

// serve accepts one connection and passes it to handler
func serve(t *testing.T, handler func(conn net.Conn)) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}()

	return ln.Addr().String()
}

func rtspServer(status string) func(conn net.Conn) {
	return func(conn net.Conn) {
		rd := bufio.NewReader(conn)
		for {
			line, err := rd.ReadString('\n')
			if err != nil || line == "\r\n" {
				break
			}
		}
		_, _ = io.WriteString(conn, "RTSP/1.0 "+status+"\r\nCSeq: 1\r\nPublic: OPTIONS, DESCRIBE, SETUP, PLAY\r\n\r\n")
	}
}

func TestRTSP(t *testing.T) {
	addr := serve(t, rtspServer("200 OK"))
	require.Nil(t, RTSP(context.Background(), "rtsp://"+addr+"/"))

	addr = serve(t, rtspServer("404 Not Found"))
	err := RTSP(context.Background(), "rtsp://"+addr+"/")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "404")

	addr = serve(t, func(conn net.Conn) {
		_, _ = io.WriteString(conn, "HTTP/1.1 400 Bad Request\r\n\r\n")
	})
	require.NotNil(t, RTSP(context.Background(), "rtsp://"+addr+"/"))
}

func TestRTMP(t *testing.T) {
	addr := serve(t, func(conn net.Conn) {
		b := make([]byte, 1+1536)
		if _, err := io.ReadFull(conn, b); err != nil {
			return
		}
		// S0+S1+S2
		_, _ = conn.Write(append(b, b[1:]...))
		_, _ = io.ReadFull(conn, b[1:])
	})
	require.Nil(t, RTMP(context.Background(), "rtmp://"+addr+"/live/cam1"))

	addr = serve(t, func(conn net.Conn) {
		_, _ = io.ReadFull(conn, make([]byte, 1+1536))
	})
	require.NotNil(t, RTMP(context.Background(), "rtmp://"+addr+"/live/cam1"))
}

func TestRTMPVersion(t *testing.T) {
	addr := serve(t, func(conn net.Conn) {
		b := make([]byte, 1+1536)
		_, _ = io.ReadFull(conn, b)
		b[0] = 0x06 // encrypted RTMP
		_, _ = conn.Write(b)
	})
	err := RTMP(context.Background(), "rtmp://"+addr+"/live")
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "version")
}

func TestDialErrors(t *testing.T) {
	err := RTSP(context.Background(), "http://127.0.0.1/")
	require.ErrorIs(t, err, ErrUnsupportedScheme)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotNil(t, RTMP(ctx, "rtmp://127.0.0.1:1/live"))

	// closed port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := ln.Addr().String()
	_ = ln.Close()
	require.NotNil(t, RTSP(context.Background(), "rtsp://"+addr+"/"))
}

func TestDevice(t *testing.T) {
	d := fromEntry(&mdns.ServiceEntry{
		Name:       "Camera._rtsp._tcp.local.",
		Host:       "camera.local.",
		AddrV4:     net.IPv4(192, 168, 3, 16),
		Port:       554,
		InfoFields: []string{"path=/"},
	})
	require.NotNil(t, d)
	require.Equal(t, "rtsp://192.168.3.16:554/", d.URL())

	d.Name = "Camera._rtmp._tcp.local."
	d.Port = 1935
	require.Equal(t, "rtmp://192.168.3.16:1935/", d.URL())

	require.Nil(t, fromEntry(&mdns.ServiceEntry{Name: "no address", Port: 554}))
	require.Nil(t, fromEntry(nil))
}
