package helper

import (
	"runtime"
	"strings"
)

// GetFuncName returns the short name of the calling function, e.g. "migration.(*Migrator).MigrateUsers".
func GetFuncName() string {
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx != -1 {
		name = name[idx+1:]
	}
	return name
}
