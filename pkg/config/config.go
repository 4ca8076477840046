package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Region 游戏窗口区域
type Region struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Keys 按键配置
type Keys struct {
	Attack    string `json:"attack"`
	Pickup    string `json:"pickup"`
	Up        string `json:"up"`
	Down      string `json:"down"`
	Left      string `json:"left"`
	Right     string `json:"right"`
	EnterDoor string `json:"enter_door"`
	Toggle    string `json:"toggle"`
	Stop      string `json:"stop"`
}

// ColorRange HSV 阈值区间
type ColorRange struct {
	Lower [3]int `json:"lower"`
	Upper [3]int `json:"upper"`
}

// Colors 颜色检测配置 (HSV)
type Colors struct {
	// MonsterHP 怪物血条，红色跨越色相原点，需要两段
	MonsterHP []ColorRange `json:"monster_hp"`
	// GoldItems 金色物品
	GoldItems []ColorRange `json:"gold_items"`
	// PlayerTag 角色名字标签（绿色文字）
	PlayerTag []ColorRange `json:"player_tag"`
}

// Thresholds 检测阈值
type Thresholds struct {
	MonsterArea   int     `json:"monster_area"`    // 怪物最小面积
	ItemArea      int     `json:"item_area"`       // 物品最小面积
	PlayerMinArea int     `json:"player_min_area"` // 名字标签最小面积
	PlayerMaxArea int     `json:"player_max_area"` // 名字标签最大面积
	DoorMatch     float64 `json:"door_match"`      // 门模板匹配阈值
	ItemMatch     float64 `json:"item_match"`      // 物品模板匹配阈值
	MinSeparation int     `json:"min_separation"`  // 去重距离
	MinBrightness float64 `json:"min_brightness"`  // 匹配区域亮度下限
	MaxBrightness float64 `json:"max_brightness"`  // 匹配区域亮度上限
	Movement      int     `json:"movement"`        // 移动阈值
}

// Player 角色定位配置
type Player struct {
	RefreshInterval int     `json:"refresh_interval"` // 每隔多少帧重新定位
	TagOffset       int     `json:"tag_offset"`       // 名字标签到角色的垂直距离
	EdgeMargin      int     `json:"edge_margin"`      // 距边缘小于该值的候选丢弃
	AreaWeight      float64 `json:"area_weight"`
	DistanceWeight  float64 `json:"distance_weight"`
}

// Delays 时间延迟配置（毫秒）
type Delays struct {
	Movement  int `json:"movement"`
	Attack    int `json:"attack"`
	Pickup    int `json:"pickup"`
	DoorEnter int `json:"door_enter"`
	MainLoop  int `json:"main_loop"`
}

// Duration 毫秒转 time.Duration
func Duration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Templates 模板配置
type Templates struct {
	Dir   string   `json:"dir"`
	Doors []string `json:"doors"`
	Items []string `json:"items"`
}

// Log 日志配置
type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Config 机器人配置
type Config struct {
	GameWindow  Region     `json:"game_window"`
	ProcessName string     `json:"process_name"`
	Keys        Keys       `json:"keys"`
	Colors      Colors     `json:"colors"`
	Thresholds  Thresholds `json:"thresholds"`
	Player      Player     `json:"player"`
	Delays      Delays     `json:"delays"`
	Templates   Templates  `json:"templates"`
	Log         Log        `json:"log"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		GameWindow:  Region{Top: 0, Left: 0, Width: 1920, Height: 1080},
		ProcessName: "DNF",
		Keys: Keys{
			Attack:    "a",
			Pickup:    "z",
			Up:        "up",
			Down:      "down",
			Left:      "left",
			Right:     "right",
			EnterDoor: "up",
			Toggle:    "f1",
			Stop:      "f2",
		},
		Colors: Colors{
			MonsterHP: []ColorRange{
				{Lower: [3]int{0, 120, 70}, Upper: [3]int{10, 255, 255}},
				{Lower: [3]int{170, 120, 70}, Upper: [3]int{180, 255, 255}},
			},
			GoldItems: []ColorRange{
				{Lower: [3]int{15, 100, 100}, Upper: [3]int{35, 255, 255}},
			},
			PlayerTag: []ColorRange{
				{Lower: [3]int{35, 40, 40}, Upper: [3]int{85, 255, 255}},
			},
		},
		Thresholds: Thresholds{
			MonsterArea:   100,
			ItemArea:      50,
			PlayerMinArea: 50,
			PlayerMaxArea: 1500,
			DoorMatch:     0.7,
			ItemMatch:     0.7,
			MinSeparation: 30,
			MinBrightness: 10,
			MaxBrightness: 245,
			Movement:      20,
		},
		Player: Player{
			RefreshInterval: 5,
			TagOffset:       40,
			EdgeMargin:      100,
			AreaWeight:      0.1,
			DistanceWeight:  0.01,
		},
		Delays: Delays{
			Movement:  300,
			Attack:    500,
			Pickup:    300,
			DoorEnter: 2000,
			MainLoop:  100,
		},
		Templates: Templates{
			Dir:   "templates",
			Doors: []string{"door1.png", "door2.png", "door3.png", "door4.png"},
			Items: []string{"item1.png", "item2.png"},
		},
		Log: Log{Level: "INFO"},
	}
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	if c.GameWindow.Width <= 0 || c.GameWindow.Height <= 0 {
		return fmt.Errorf("游戏窗口尺寸无效: %dx%d", c.GameWindow.Width, c.GameWindow.Height)
	}
	for name, v := range map[string]float64{
		"door_match": c.Thresholds.DoorMatch,
		"item_match": c.Thresholds.ItemMatch,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("匹配阈值 %s 超出范围 [0,1]: %.2f", name, v)
		}
	}
	if c.Thresholds.MinBrightness > c.Thresholds.MaxBrightness {
		return fmt.Errorf("亮度区间无效: [%.0f, %.0f]", c.Thresholds.MinBrightness, c.Thresholds.MaxBrightness)
	}
	if c.Thresholds.PlayerMaxArea > 0 && c.Thresholds.PlayerMaxArea <= c.Thresholds.PlayerMinArea {
		return fmt.Errorf("名字标签面积区间无效: [%d, %d)", c.Thresholds.PlayerMinArea, c.Thresholds.PlayerMaxArea)
	}
	if len(c.Colors.MonsterHP) == 0 || len(c.Colors.GoldItems) == 0 || len(c.Colors.PlayerTag) == 0 {
		return fmt.Errorf("颜色区间不能为空")
	}
	if c.Player.RefreshInterval < 0 {
		return fmt.Errorf("刷新间隔不能为负数: %d", c.Player.RefreshInterval)
	}
	return nil
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return NewManagerWithDir(filepath.Join(homeDir, ".dungeonbot"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置
// 文件中缺失的字段保留默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("配置无效: %w", err)
	}

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := config.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*Config, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *Config) error {
	return defaultManager.Save(config)
}

// Clear 使用默认管理器清除配置
func Clear() error {
	return defaultManager.Clear()
}
