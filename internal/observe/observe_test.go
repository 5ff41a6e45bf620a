package observe

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tonecfg/tonecfg/pkg/probe"
)

func rtspServer(t *testing.T) string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			rd := bufio.NewReader(conn)
			for {
				line, err := rd.ReadString('\n')
				if err != nil || line == "\r\n" {
					break
				}
			}
			_, _ = io.WriteString(conn, "RTSP/1.0 200 OK\r\nCSeq: 1\r\n\r\n")
			_ = conn.Close()
		}
	}()

	return "rtsp://" + ln.Addr().String() + "/"
}

func TestObserveCommand(t *testing.T) {
	out := bytes.NewBuffer(nil)
	Output = out
	defer func() { Output = os.Stdout }()

	url := rtspServer(t)
	require.Nil(t, observeCommand([]string{url}))
	require.Equal(t, "OK "+url+"\n", out.String())

	err := observeCommand([]string{url, "rtmp://127.0.0.1:1/live"})
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "1 of 2")

	require.NotNil(t, observeCommand(nil))
}

func TestProbe(t *testing.T) {
	err := Probe(context.Background(), "http://127.0.0.1/")
	require.ErrorIs(t, err, probe.ErrUnsupportedScheme)
}
