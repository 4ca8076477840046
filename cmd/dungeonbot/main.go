package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zoeyai/dungeonbot/internal/logger"
	"github.com/zoeyai/dungeonbot/pkg/auto"
	"github.com/zoeyai/dungeonbot/pkg/bot"
	"github.com/zoeyai/dungeonbot/pkg/config"
	"github.com/zoeyai/dungeonbot/pkg/permissions"
	"github.com/zoeyai/dungeonbot/pkg/process"
	"github.com/zoeyai/dungeonbot/pkg/vision"
	"github.com/zoeyai/dungeonbot/pkg/vision/cv"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = vision.Version
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	var (
		configDir    = flag.String("config", "", "配置目录 (默认 ~/.dungeonbot)")
		templateDir  = flag.String("templates", "", "模板目录")
		processName  = flag.String("process", "", "游戏进程名")
		logLevel     = flag.String("level", "", "日志级别 (DEBUG/INFO/WARN/ERROR)")
		logFile      = flag.String("log", "", "日志文件")
		interval     = flag.Int("interval", -1, "角色位置刷新间隔（帧）")
		waitProcess  = flag.Duration("wait", 0, "等待游戏进程启动的最长时间")
		snapshot     = flag.String("snapshot", "", "截取一帧保存到文件后退出（用于制作模板）")
		autostart    = flag.Bool("autostart", false, "启动后立即运行，不等待热键")
		noHotkeys    = flag.Bool("no-hotkeys", false, "不注册全局热键")
		saveConfig   = flag.Bool("save", false, "保存配置到本地")
		showVersion  = flag.Bool("version", false, "显示版本信息")
		showHelp     = flag.Bool("help", false, "显示帮助信息")
		skipProcess  = flag.Bool("skip-process", false, "不检查游戏进程")
		skipTemplate = flag.Bool("skip-templates", false, "不加载模板，只使用颜色定位")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}
	if *showHelp {
		printHelp()
		return
	}

	manager := config.GetDefaultManager()
	if *configDir != "" {
		manager = config.NewManagerWithDir(*configDir)
	}

	cfg, err := manager.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败，使用默认配置: %v\n", err)
	}

	// 命令行参数优先级高于配置文件
	if *templateDir != "" {
		cfg.Templates.Dir = *templateDir
	}
	if *processName != "" {
		cfg.ProcessName = *processName
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}
	if *interval >= 0 {
		cfg.Player.RefreshInterval = *interval
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("[ERROR] 配置无效: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg)
	defer logger.Default().Close()

	if *saveConfig {
		if err := manager.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", manager.GetConfigFile())
		}
	}

	printBanner(cfg)

	if status := permissions.Check(); !status.Granted() {
		fmt.Println(status.Instructions())
		permissions.OpenSettings(status)
		os.Exit(1)
	}

	desktop := auto.NewDesktop(
		auto.WithRegion(auto.Region{
			X:      cfg.GameWindow.Left,
			Y:      cfg.GameWindow.Top,
			Width:  cfg.GameWindow.Width,
			Height: cfg.GameWindow.Height,
		}),
		auto.WithFrameSize(cfg.GameWindow.Width, cfg.GameWindow.Height),
	)

	if *snapshot != "" {
		if err := desktop.Snapshot(*snapshot); err != nil {
			fmt.Printf("[ERROR] 截图失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[INFO] 已保存截图 %s\n", *snapshot)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !*skipProcess {
		if err := checkProcess(ctx, cfg.ProcessName, *waitProcess); err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			fmt.Println("[INFO] 使用 -skip-process 跳过进程检查")
			os.Exit(1)
		}
	}

	store := cv.NewTemplateStore(cfg.Templates.Dir)
	defer store.Close()
	if !*skipTemplate {
		loadTemplates(store, cfg)
	}

	perceiver := vision.NewPerceiver(store, vision.WithConfig(cfg))
	b := bot.New(cfg, desktop, desktop, perceiver)

	if !*noHotkeys {
		done := bot.ListenHotkeys(ctx, b, cfg.Keys.Toggle, cfg.Keys.Stop, cancel)
		defer func() {
			cancel()
			select {
			case <-done:
			case <-time.After(time.Second):
			}
		}()
	}
	if *autostart || *noHotkeys {
		b.SetRunning(true)
	}

	fmt.Println("[INFO] 按 Ctrl+C 退出")
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("[ERROR] 运行失败: %v\n", err)
	}

	s := b.Stats()
	fmt.Println()
	fmt.Printf("[INFO] 已退出: 帧 %d 跳过 %d 攻击 %d 拾取 %d 过门 %d\n",
		s.Frames, s.Skipped, s.Attacks, s.Pickups, s.Transitions)
}

// setupLogger 按配置设置日志级别和日志文件
func setupLogger(cfg *config.Config) {
	l := logger.Default()
	l.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.File != "" {
		if err := l.SetFile(cfg.Log.File); err != nil {
			fmt.Printf("[WARN] %v\n", err)
		}
	}
}

// checkProcess 检查游戏是否已启动，wait > 0 时轮询等待
func checkProcess(ctx context.Context, name string, wait time.Duration) error {
	if wait <= 0 {
		info, err := process.FindGameProcess(ctx, name)
		if err != nil {
			return err
		}
		logger.Info("[进程] 找到游戏进程 %s", info)
		return nil
	}

	fmt.Printf("[INFO] 等待游戏进程 %s (最长 %s)...\n", name, wait)
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	info, err := process.WaitForProcess(waitCtx, name, time.Second)
	if err != nil {
		return err
	}
	logger.Info("[进程] 找到游戏进程 %s", info)
	return nil
}

// loadTemplates 加载门和物品模板，缺失的模板只警告
func loadTemplates(store *cv.TemplateStore, cfg *config.Config) {
	doors := store.LoadAll(vision.CategoryDoor, cfg.Templates.Doors...)
	items := store.LoadAll(vision.CategoryItem, cfg.Templates.Items...)
	logger.Info("[模板] 门 %d/%d 物品 %d/%d (目录 %s)",
		doors, len(cfg.Templates.Doors), items, len(cfg.Templates.Items), store.Dir())

	if missing := store.Missing(); len(missing) > 0 {
		fmt.Printf("[WARN] %d 个模板不可用: %v\n", len(missing), missing)
	}
	if doors == 0 {
		fmt.Println("[WARN] 没有可用的门模板，将无法自动过门")
	}
}

func printBanner(cfg *config.Config) {
	fmt.Println("========================================")
	fmt.Printf("  Dungeon Bot v%s\n", Version)
	fmt.Println("========================================")
	fmt.Printf("游戏窗口: %dx%d+%d+%d\n", cfg.GameWindow.Width, cfg.GameWindow.Height, cfg.GameWindow.Left, cfg.GameWindow.Top)
	fmt.Printf("游戏进程: %s\n", cfg.ProcessName)
	fmt.Printf("模板目录: %s\n", cfg.Templates.Dir)
	fmt.Printf("热键: %s 开始/暂停, %s 停止\n", cfg.Keys.Toggle, cfg.Keys.Stop)
	fmt.Println()
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Dungeon Bot v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Dungeon Bot - 地下城自动刷图工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  dungeonbot [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 使用已保存的配置运行，F1 开始")
	fmt.Println("  dungeonbot")
	fmt.Println()
	fmt.Println("  # 指定模板目录并保存配置")
	fmt.Println("  dungeonbot -templates ./templates -save")
	fmt.Println()
	fmt.Println("  # 截取一帧用于制作门模板")
	fmt.Println("  dungeonbot -snapshot frame.png -skip-process")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
