package simulation

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is a snapshot of the process's footprint.
type ResourceUsage struct {
	MemoryRSS      uint64 `json:"memory_rss"`
	MemoryVMS      uint64 `json:"memory_vms"`
	HeapAlloc      uint64 `json:"heap_alloc"`
	GoroutineCount int    `json:"goroutines"`
	ThreadCount    int32  `json:"threads"`
}

// ResourceMonitor samples resource usage of the current process.
type ResourceMonitor struct {
	process *process.Process
}

// NewResourceMonitor creates a monitor for this process. When the process
// cannot be inspected, samples only carry Go runtime figures.
func NewResourceMonitor() *ResourceMonitor {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		proc = nil
	}
	return &ResourceMonitor{process: proc}
}

// Sample returns the current resource usage.
func (rm *ResourceMonitor) Sample() ResourceUsage {
	var usage ResourceUsage

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	usage.HeapAlloc = memStats.HeapAlloc
	usage.GoroutineCount = runtime.NumGoroutine()

	if rm.process == nil {
		return usage
	}
	if memInfo, err := rm.process.MemoryInfo(); err == nil {
		usage.MemoryRSS = memInfo.RSS
		usage.MemoryVMS = memInfo.VMS
	}
	usage.ThreadCount, _ = rm.process.NumThreads()
	return usage
}
