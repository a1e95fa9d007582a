package models

import "time"

// ServerInfoResponse represents the server info response
type ServerInfoResponse struct {
	Uptime       float64     `json:"uptime"`
	IdleTime     float64     `json:"idle_time"`
	LastRunTime  time.Time   `json:"last_run_time"`
	WorkingDir   string      `json:"working_directory"`
	Defaults     Defaults    `json:"defaults"`
	SystemStats  SystemStats `json:"system_stats"`
	RenamesTotal int         `json:"renames_total"`
}

// Defaults are the values used when a request leaves a field empty
type Defaults struct {
	Folder    string `json:"folder"`
	Extension string `json:"extension"`
	Prefix    string `json:"prefix"`
	Order     string `json:"order"`
	Preflight bool   `json:"preflight"`
}

// SystemStats represents process and disk statistics
type SystemStats struct {
	CPUCount int         `json:"cpu_count"`
	Memory   MemoryStats `json:"memory"`
	Disk     DiskStats   `json:"disk"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	RSS     uint64  `json:"rss"`     // Resident Set Size in bytes
	VMS     uint64  `json:"vms"`     // Virtual Memory Size in bytes
	Percent float32 `json:"percent"` // Memory usage percentage
}

// DiskStats represents disk usage of the filesystem holding the working directory
type DiskStats struct {
	Path    string  `json:"path"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}
