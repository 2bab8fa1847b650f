// Package widget produces the live text shown on "widget" buttons —
// clock, date, weekday, CPU/RAM/temperature readouts, countdown timers,
// and OBS/Twitch status — and owns the per-timer toggle state.
package widget

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/matthewpi/redragon-deck/internal/obs"
	"github.com/matthewpi/redragon-deck/internal/twitch"
)

var weekdayNames = [7]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// IsWidgetCommand reports whether cmd names one of the live text
// producers this package implements.
func IsWidgetCommand(cmd string) bool {
	switch {
	case strings.HasPrefix(cmd, "__CLOCK"),
		strings.HasPrefix(cmd, "__DATE"),
		strings.HasPrefix(cmd, "__WEEKDAY"),
		strings.HasPrefix(cmd, "__CPU"),
		strings.HasPrefix(cmd, "__RAM"),
		strings.HasPrefix(cmd, "__TEMP"),
		strings.HasPrefix(cmd, "__TIMER"):
		return true
	case cmd == "__OBS_STATUS__", cmd == "__TWITCH_VIEWERS__", cmd == "__TWITCH_FOLLOWERS__":
		return true
	default:
		return false
	}
}

// Engine holds the mutable state widget text producers need: one
// TimerState per distinct __TIMER_N__ command, plus references to the
// OBS and Twitch caches populated asynchronously by their clients.
type Engine struct {
	obs    *obs.Cache
	twitch *twitch.Cache

	timers map[string]*TimerState
}

// NewEngine constructs an Engine backed by the given OBS/Twitch caches.
func NewEngine(obsCache *obs.Cache, twitchCache *twitch.Cache) *Engine {
	return &Engine{obs: obsCache, twitch: twitchCache, timers: make(map[string]*TimerState)}
}

// TimerState tracks one countdown timer's start epoch and duration as
// independent atomics; a reader observing only one of the two updated
// treats that as still-idle, per the documented tolerance for the brief
// inconsistency window.
type TimerState struct {
	start    atomic.Int64
	duration atomic.Int64
	done     atomic.Bool
}

// Toggle starts the timer for durationSeconds if idle, or resets it to
// idle if running.
func (t *TimerState) Toggle(durationSeconds int64) {
	if t.start.Load() == 0 {
		t.start.Store(time.Now().Unix())
		t.duration.Store(durationSeconds)
		t.done.Store(false)
		return
	}
	t.start.Store(0)
	t.duration.Store(0)
	t.done.Store(false)
}

// Text renders the timer's current MM:SS remaining, "DONE!" exactly once
// on completion, and "00:00" when idle or after the completion has been
// observed once.
func (t *TimerState) Text() string {
	start := t.start.Load()
	duration := t.duration.Load()
	if start == 0 || duration == 0 {
		return "00:00"
	}

	elapsed := time.Now().Unix() - start
	remaining := duration - elapsed
	if remaining <= 0 {
		if t.done.CompareAndSwap(false, true) {
			t.start.Store(0)
			t.duration.Store(0)
			return "DONE!"
		}
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}

func (e *Engine) timerFor(cmd string) *TimerState {
	ts, ok := e.timers[cmd]
	if !ok {
		ts = &TimerState{}
		e.timers[cmd] = ts
	}
	return ts
}

// HandleTimerPress toggles the timer named by a __TIMER_N__ command,
// parsing N as the duration in minutes.
func (e *Engine) HandleTimerPress(cmd string) {
	n := parseTimerMinutes(cmd)
	e.timerFor(cmd).Toggle(int64(n) * 60)
}

func parseTimerMinutes(cmd string) int {
	trimmed := strings.TrimPrefix(cmd, "__TIMER_")
	trimmed = strings.TrimSuffix(trimmed, "__")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0
	}
	return n
}

// Text produces the display text for a widget command.
func (e *Engine) Text(cmd string) string {
	now := time.Now()
	switch {
	case cmd == "__CLOCK__":
		return now.Format("15:04")
	case cmd == "__CLOCK_S__":
		return now.Format("15:04:05")
	case cmd == "__DATE__":
		return now.Format("02/01")
	case cmd == "__DATE_FULL__":
		return now.Format("02/01/2006")
	case cmd == "__WEEKDAY__":
		return weekdayNames[int(now.Weekday())]
	case cmd == "__CPU__":
		return fmt.Sprintf("%d%%", samplePercentCPU())
	case cmd == "__RAM__":
		return fmt.Sprintf("%d%%", sampleRAMPercent())
	case cmd == "__TEMP__":
		if c, ok := sampleTempC(); ok {
			return fmt.Sprintf("%d°C", c)
		}
		return "N/A"
	case strings.HasPrefix(cmd, "__TIMER"):
		return e.timerFor(cmd).Text()
	case cmd == "__OBS_STATUS__":
		return e.obsStatusText()
	case cmd == "__TWITCH_VIEWERS__":
		return e.twitchViewersText()
	case cmd == "__TWITCH_FOLLOWERS__":
		return e.twitchFollowersText()
	default:
		return ""
	}
}

func (e *Engine) obsStatusText() string {
	snap := e.obs.Snapshot()
	if !snap.Connected {
		return "OBS OFF"
	}
	streaming, recording := "---", "---"
	if snap.Streaming {
		streaming = "LIVE"
	}
	if snap.Recording {
		recording = "REC"
	}
	return fmt.Sprintf("%s/%s", streaming, recording)
}

func (e *Engine) twitchViewersText() string {
	snap := e.twitch.Snapshot()
	if !snap.Configured {
		return "TWITCH"
	}
	if !snap.Live {
		return "OFFLINE"
	}
	return fmt.Sprintf("%dv", snap.ViewerCount)
}

func (e *Engine) twitchFollowersText() string {
	snap := e.twitch.Snapshot()
	if !snap.Configured {
		return "TWITCH"
	}
	return fmt.Sprintf("%df", snap.FollowerCount)
}

// samplePercentCPU takes two /proc/stat snapshots 200ms apart and returns
// the integer percentage of non-idle time across that window.
func samplePercentCPU() int {
	first, err := readProcStatTotals()
	if err != nil {
		return 0
	}
	time.Sleep(200 * time.Millisecond)
	second, err := readProcStatTotals()
	if err != nil {
		return 0
	}

	totalDelta := second.total - first.total
	idleDelta := second.idle - first.idle
	if totalDelta <= 0 {
		return 0
	}
	pct := 100 * (totalDelta - idleDelta) / totalDelta
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

type cpuTotals struct {
	total int64
	idle  int64
}

func readProcStatTotals() (cpuTotals, error) {
	b, err := os.ReadFile("/proc/stat")
	if err != nil {
		return cpuTotals{}, err
	}
	lines := strings.SplitN(string(b), "\n", 2)
	if len(lines) == 0 {
		return cpuTotals{}, fmt.Errorf("widget: empty /proc/stat")
	}
	fields := strings.Fields(lines[0])
	if len(fields) < 5 || fields[0] != "cpu" {
		return cpuTotals{}, fmt.Errorf("widget: unexpected /proc/stat format")
	}

	var total int64
	var idle int64
	for i, f := range fields[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		total += v
		// idle is field index 3 (0-based within fields[1:]), iowait is 4.
		if i == 3 || i == 4 {
			idle += v
		}
	}
	return cpuTotals{total: total, idle: idle}, nil
}

// sampleRAMPercent reads /proc/meminfo and returns used/total as a
// percentage.
func sampleRAMPercent() int {
	b, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0
	}
	values := map[string]int64{}
	for _, line := range strings.Split(string(b), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		key := strings.TrimSuffix(fields[0], ":")
		v, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		values[key] = v
	}

	total, ok := values["MemTotal"]
	if !ok || total == 0 {
		return 0
	}
	available, ok := values["MemAvailable"]
	if !ok {
		free := values["MemFree"]
		buffers := values["Buffers"]
		cached := values["Cached"]
		available = free + buffers + cached
	}
	used := total - available
	pct := 100 * used / total
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// sampleTempC returns the CPU temperature in whole degrees Celsius,
// trying the thermal zone file first, then hwmon sensors 0..9.
func sampleTempC() (int, bool) {
	if v, ok := readMillidegrees("/sys/class/thermal/thermal_zone0/temp"); ok {
		return v / 1000, true
	}
	for i := 0; i < 10; i++ {
		path := fmt.Sprintf("/sys/class/hwmon/hwmon%d/temp1_input", i)
		if v, ok := readMillidegrees(path); ok {
			return v / 1000, true
		}
	}
	return 0, false
}

func readMillidegrees(path string) (int, bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, false
	}
	return v, true
}
