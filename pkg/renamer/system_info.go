package renamer

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/audio-renamer/internal/models"
)

// SystemStats reports process memory and the disk usage of the filesystem
// holding dir. Failures are logged and reported as zero values.
func SystemStats(logger *logrus.Logger, dir string) models.SystemStats {
	stats := models.SystemStats{CPUCount: runtime.NumCPU()}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warnf("Failed to get process info: %v", err)
	} else {
		if memInfo, err := proc.MemoryInfo(); err != nil {
			logger.Warnf("Failed to get memory info: %v", err)
		} else {
			stats.Memory.RSS = memInfo.RSS
			stats.Memory.VMS = memInfo.VMS
		}
		if memPercent, err := proc.MemoryPercent(); err != nil {
			logger.Warnf("Failed to get memory percent: %v", err)
		} else {
			stats.Memory.Percent = memPercent
		}
	}

	if dir == "" {
		dir = "/"
	}
	stats.Disk.Path = dir
	usage, err := disk.Usage(dir)
	if err != nil {
		logger.Warnf("Failed to get disk usage for %s: %v", dir, err)
		return stats
	}
	stats.Disk.Total = usage.Total
	stats.Disk.Used = usage.Used
	stats.Disk.Free = usage.Free
	stats.Disk.Percent = usage.UsedPercent
	return stats
}
