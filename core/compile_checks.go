package core

import (
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-resources/codec"
)

var (
	_ Registry          = (*ResourceRegistry)(nil)
	_ DispatchService   = (*Service)(nil)
	_ ConfigProvider    = (*CfgxConfigProvider)(nil)
	_ OptionsResolver   = GoOptionsResolver{}
	_ ArgumentConverter = (*codec.Decoder)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
