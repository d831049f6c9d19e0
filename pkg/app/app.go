package app

import (
	"context"
	"fmt"

	"atomvault/pkg/format"
	"atomvault/pkg/fs"
	"atomvault/pkg/fs/local"
	"atomvault/pkg/fs/s3"
	"atomvault/pkg/target"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有"单例"服务
type App struct {
	FS fs.FileSystem
}

// NewApp 是工厂函数，负责组装这一台机器
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	fsys, err := initFS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}
	return &App{FS: fsys}, nil
}

// initFS 按配置选择存储后端 (Dependency Injection)
func initFS(ctx context.Context) (fs.FileSystem, error) {
	switch viper.GetString("storage.type") {
	case "disk", "":
		return local.NewAdapter(), nil

	case "s3":
		bucket := viper.GetString("s3.bucket")
		if bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}
		return s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          bucket,
			AccessKeyID:     viper.GetString("s3.access_key_id"),
			SecretAccessKey: viper.GetString("s3.secret_access_key"),
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", viper.GetString("storage.type"))
	}
}

// Target 用当前后端为一个逻辑路径创建产物句柄
func (a *App) Target(path string, fmts ...format.Format) *target.FSTarget {
	return target.New(a.FS, path, fmts...)
}
