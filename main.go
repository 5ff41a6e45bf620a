package main

import (
	"os"

	"github.com/tonecfg/tonecfg/internal/api"
	"github.com/tonecfg/tonecfg/internal/api/ws"
	"github.com/tonecfg/tonecfg/internal/app"
	"github.com/tonecfg/tonecfg/internal/decode"
	"github.com/tonecfg/tonecfg/internal/encode"
	"github.com/tonecfg/tonecfg/internal/modem"
	"github.com/tonecfg/tonecfg/internal/observe"
	"github.com/tonecfg/tonecfg/internal/simulate"
)

func main() {
	app.Init() // init config and logs

	// 1. Core modules: api/ws server and modem params

	api.Init() // api before others, modules register their endpoints
	ws.Init()  // ws before modules with ws handlers

	modem.Init()

	// 2. Main commands

	encode.Init()   // encode and play
	decode.Init()   // decode and listen
	simulate.Init() // simulated device

	// 3. Camera checks

	observe.Init() // rtsp/rtmp probes and mDNS discovery

	os.Exit(app.Run())
}
