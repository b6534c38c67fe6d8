package telemetry

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"AddressBook/storage/redis"
)

// Recorder 统计前端命令的调用次数，失败不影响命令本身
type Recorder interface {
	Record(ctx context.Context, command string)
}

// Nop 关闭遥测时使用
type Nop struct{}

func (Nop) Record(context.Context, string) {}

// New 按配置选择实现：关闭时 Nop，有 Redis 时写 hash，否则写 dataDir 下的 telemetry.json
func New(enabled bool, dataDir string, client *goredis.Client, log *zap.Logger) Recorder {
	if !enabled {
		return Nop{}
	}
	if client != nil {
		return NewRedisRecorder(client, redis.Key("telemetry", "commands"), log)
	}
	return NewFileRecorder(dataDir, log)
}
