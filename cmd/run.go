package cmd

import (
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/haierkeys/ecrit-note-service/pkg/fileurl"
	"github.com/haierkeys/ecrit-note-service/pkg/util"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultAuthTokenPlaceholder 内嵌默认配置中的密钥占位符，首次生成配置时替换为随机值
const defaultAuthTokenPlaceholder = "ecrit-Auth-Token"

// configCandidates 未指定配置文件时按顺序查找
var configCandidates = []string{
	"config/config-dev.yaml",
	"config.yaml",
	"config/config.yaml",
}

type runFlags struct {
	dir     string // 项目根目录
	port    string // 启动端口
	runMode string // 启动模式
	config  string // 指定要使用的配置文件路径
}

// findConfigFile 返回第一个存在的候选配置文件
func findConfigFile() string {
	for _, p := range configCandidates {
		if fileurl.IsExist(p) {
			return p
		}
	}
	return ""
}

// writeDefaultConfig 写出内嵌的默认配置并替换密钥占位符
func writeDefaultConfig(path string) error {
	content := strings.Replace(configDefault, defaultAuthTokenPlaceholder, util.GetRandomString(32), 1)
	if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
		return err
	}
	return fileurl.WriteFileAtomic(path, []byte(content), 0o600)
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				if err := os.Chdir(runEnv.dir); err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			if len(runEnv.config) <= 0 {
				runEnv.config = findConfigFile()
			}
			if len(runEnv.config) <= 0 {
				bootstrapLogger.Warn("config file not found, creating default config")
				runEnv.config = "config/config.yaml"
				if err := writeDefaultConfig(runEnv.config); err != nil {
					bootstrapLogger.Error("config file auto create error", zap.Error(err))
					return
				}
				bootstrapLogger.Info("config file auto create successfully", zap.String("path", runEnv.config))
			}

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("api service start err", zap.Error(err))
				return
			}

			var current atomic.Pointer[Server]
			current.Store(s)

			w := watcher.New()

			// 每个监听周期至多接收 1 个事件
			w.SetMaxEvents(1)

			// 只通知写入事件
			w.FilterOps(watcher.Write)

			go func() {
				for {
					select {
					case event := <-w.Event:
						old := current.Load()
						old.logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
						old.sc.SendCloseSignal(nil)
						_ = old.sc.WaitClosed()

						// 重新初始化 server
						next, err := NewServer(runEnv)
						if err != nil {
							bootstrapLogger.Error("service restart err", zap.Error(err))
							continue
						}
						current.Store(next)
					case err := <-w.Error:
						current.Load().logger.Error("config watcher error", zap.Error(err))
					case <-w.Closed:
						bootstrapLogger.Info("config watcher closed")
						return
					}
				}
			}()

			// 监听配置文件
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}

			go func() {
				if err := w.Start(time.Second * 5); err != nil {
					s.logger.Error("config watcher start error", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			w.Close()
			s = current.Load()
			s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
			s.sc.SendCloseSignal(nil)

			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			if err := s.sc.WaitClosed(); err != nil {
				s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}
