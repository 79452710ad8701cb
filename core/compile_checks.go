package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Deliverer       = DelivererFunc(nil)
	_ Sender[[]byte]  = SenderFunc[[]byte](nil)
	_ Logger          = glog.Nop()
	_ LoggerProvider  = glog.ProviderFromLogger(glog.Nop())
	_ MetricsRecorder = NopMetricsRecorder{}
)
