package metrics

import "expvar"

// 按资源/命令名分桶的计数，挂在 /debug/vars 下
var (
	Fetches       = expvar.NewMap("fetches")
	FetchErrors   = expvar.NewMap("fetch_errors")
	FetchSkipped  = expvar.NewMap("fetch_skipped")
	Commands      = expvar.NewMap("commands")
	CommandErrors = expvar.NewMap("command_errors")
)

// RecordFetch 一次轮询拉取结束
func RecordFetch(resource string, err error) {
	Fetches.Add(resource, 1)
	if err != nil {
		FetchErrors.Add(resource, 1)
	}
}

// RecordSkip 上一次拉取未结束，本次跳过
func RecordSkip(resource string) {
	FetchSkipped.Add(resource, 1)
}

// RecordCommand 一次用户命令结束；ok=false 包含传输失败和后端拒绝
func RecordCommand(command string, ok bool) {
	Commands.Add(command, 1)
	if !ok {
		CommandErrors.Add(command, 1)
	}
}

// Count 读取某个 map 的计数，未出现过的 key 返回 0
func Count(m *expvar.Map, key string) int64 {
	v, ok := m.Get(key).(*expvar.Int)
	if !ok || v == nil {
		return 0
	}
	return v.Value()
}
