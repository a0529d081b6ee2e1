package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	gologging "github.com/op/go-logging"

	"yoyboard/internal/config"
	"yoyboard/internal/logging"
	"yoyboard/internal/server"
	"yoyboard/internal/util"
)

var log = gologging.MustGetLogger("yoyboard")

var (
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	dataDir    = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	configPath = flag.String("config", "", "配置文件路径 (默认为可执行文件同目录下的 config.toml)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  YOY Board - 门店同比分析看板")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		// 已存在但无法使用的配置文件不覆盖
		info = config.LoadConfigInfo{FileFound: true}
	}

	if err := logging.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q: %v\n", cfg.Log.Level, err)
		_ = logging.Init("INFO")
	}

	// 首次运行生成默认配置文件
	if !info.FileFound && info.Path != "" {
		if err := config.SaveConfig(cfg, info.Path); err != nil {
			log.Warningf("写入默认配置失败: %v", err)
		} else {
			log.Infof("已生成默认配置: %s", info.Path)
		}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	// 端口被占用且未显式指定时顺延
	if !info.PortSpecified && *port == 0 {
		if p, err := util.FindAvailablePort(cfg.Server.Port, 20); err == nil && p != cfg.Server.Port {
			log.Noticef("端口 %d 被占用，改用 %d", cfg.Server.Port, p)
			cfg.Server.Port = p
		}
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("服务初始化失败: %v", err)
	}
	log.Infof("数据目录: %s", config.ResolveDataDir(cfg))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("服务启动中，监听端口 %d ...", cfg.Server.Port)
		errCh <- srv.Run(addr)
	}()

	// 打开浏览器
	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowser(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			log.Errorf("服务异常退出: %v", err)
		}
	}

	fmt.Println("\n正在关闭服务...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("关闭服务失败: %v", err)
	}
}
