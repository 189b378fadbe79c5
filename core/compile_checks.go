package core

import (
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-integrations/cache"
)

var (
	_ ConnectService = (*Service)(nil)
	_ KeyValueStore  = (*cache.Store)(nil)
	_ KeyValueStore  = (*cache.MemoryStore)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
