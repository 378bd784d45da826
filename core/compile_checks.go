package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ AuthStateStore = (*MemoryAuthStateStore)(nil)
	_ ProviderSource = ProviderSourceFunc(nil)
	_ Migrator       = MigratorFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
