// Package process 提供游戏进程查找功能
package process

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrProcessNotFound 没有找到游戏进程
var ErrProcessNotFound = errors.New("未找到游戏进程")

// ProcessInfo 进程信息
type ProcessInfo struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

func (p ProcessInfo) String() string {
	return fmt.Sprintf("%s(pid=%d)", p.Name, p.PID)
}

// FindProcess 按名称查找进程 (不区分大小写，支持部分匹配)
// 结果按 PID 升序
func FindProcess(ctx context.Context, name string) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	name = strings.ToLower(name)
	var matches []ProcessInfo
	for _, proc := range procs {
		procName, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(procName), name) {
			exe, _ := proc.ExeWithContext(ctx)
			matches = append(matches, ProcessInfo{
				PID:  int(proc.Pid),
				Name: procName,
				Path: exe,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].PID < matches[j].PID })
	return matches, nil
}

// GetProcessByPID 按 PID 获取进程信息
func GetProcessByPID(pid int) (*ProcessInfo, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, fmt.Errorf("进程不存在: PID=%d", pid)
	}

	name, _ := proc.Name()
	exe, _ := proc.Exe()

	return &ProcessInfo{
		PID:  pid,
		Name: name,
		Path: exe,
	}, nil
}

// IsProcessRunning 检查进程是否正在运行
func IsProcessRunning(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}

// FindGameProcess 查找游戏进程
// 先用 robotgo 精确匹配进程名，找不到再用 gopsutil 部分匹配
func FindGameProcess(ctx context.Context, name string) (*ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: 进程名为空", ErrProcessNotFound)
	}

	if pids, err := robotgo.FindIds(name); err == nil {
		for _, pid := range pids {
			if info, err := GetProcessByPID(pid); err == nil && IsProcessRunning(pid) {
				return info, nil
			}
		}
	}

	matches, err := FindProcess(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}
	return &matches[0], nil
}

// WaitForProcess 轮询直到游戏进程出现或 ctx 取消
func WaitForProcess(ctx context.Context, name string, interval time.Duration) (*ProcessInfo, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		info, err := FindGameProcess(ctx, name)
		if err == nil {
			return info, nil
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("等待进程 %s: %w", name, ctx.Err())
		}
		if !errors.Is(err, ErrProcessNotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("等待进程 %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}
