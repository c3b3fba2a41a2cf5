package sysmon

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of the resources used by a process
type Usage struct {
	PID            int32
	MemoryMB       float64 // RSS in MB
	CPUTimesUser   float64
	CPUTimesSystem float64
	IOReadMB       float64 // Cumulative
	IOWriteMB      float64 // Cumulative
	NumThreads     int32
	Uptime         time.Duration
}

// Self returns the resource usage of the current process
func Self() (*Usage, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("process not found: %w", err)
	}
	return fetchUsage(p), nil
}

// fetchUsage collects what the platform exposes; unavailable fields stay zero
func fetchUsage(p *process.Process) *Usage {
	u := &Usage{PID: p.Pid}

	if memInfo, err := p.MemoryInfo(); err == nil {
		u.MemoryMB = float64(memInfo.RSS) / 1024 / 1024
	}

	if cpuTimes, err := p.Times(); err == nil {
		u.CPUTimesUser = cpuTimes.User
		u.CPUTimesSystem = cpuTimes.System
	}

	// IO counters need extra privileges on some systems
	if ioCounters, err := p.IOCounters(); err == nil {
		u.IOReadMB = float64(ioCounters.ReadBytes) / 1024 / 1024
		u.IOWriteMB = float64(ioCounters.WriteBytes) / 1024 / 1024
	}

	if numThreads, err := p.NumThreads(); err == nil {
		u.NumThreads = numThreads
	}

	if createTime, err := p.CreateTime(); err == nil {
		u.Uptime = time.Since(time.UnixMilli(createTime))
	}

	return u
}

// MarshalZerologObject lets a Usage be logged with Event.Object
func (u *Usage) MarshalZerologObject(e *zerolog.Event) {
	e.Int32("pid", u.PID).
		Float64("rss_mb", u.MemoryMB).
		Float64("cpu_user_s", u.CPUTimesUser).
		Float64("cpu_system_s", u.CPUTimesSystem).
		Float64("io_read_mb", u.IOReadMB).
		Float64("io_write_mb", u.IOWriteMB).
		Int32("threads", u.NumThreads).
		Dur("uptime", u.Uptime)
}
