package handlers

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jmylchreest/tabcanvas/internal/database"
	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/scheduler"
	"github.com/jmylchreest/tabcanvas/pkg/httpclient"
)

// Pinger is the database capability the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// poolReporter is implemented by databases that can describe their pool.
type poolReporter interface {
	Driver() string
	PoolStats() (database.PoolStats, error)
}

// SourceLister reports the registered image sources.
type SourceLister interface {
	Sources() []models.ImageSource
}

// JobLister reports scheduled job state.
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	version   string
	startTime time.Time
	db        Pinger
	clients   *httpclient.Registry
	sources   SourceLister
	jobs      JobLister
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// WithDB sets the database used for the connectivity check.
func (h *HealthHandler) WithDB(db Pinger) *HealthHandler {
	h.db = db
	return h
}

// WithClients sets the HTTP client registry whose breakers are reported.
func (h *HealthHandler) WithClients(clients *httpclient.Registry) *HealthHandler {
	h.clients = clients
	return h
}

// WithSources sets the provider registry reported under image sources.
func (h *HealthHandler) WithSources(sources SourceLister) *HealthHandler {
	h.sources = sources
	return h
}

// WithJobs sets the scheduler reported under components.
func (h *HealthHandler) WithJobs(jobs JobLister) *HealthHandler {
	h.jobs = jobs
	return h
}

// CPUInfo is host load.
type CPUInfo struct {
	Cores              int     `json:"cores"`
	Load1Min           float64 `json:"load_1min"`
	Load5Min           float64 `json:"load_5min"`
	Load15Min          float64 `json:"load_15min"`
	LoadPercentage1Min float64 `json:"load_percentage_1min"`
}

// MemoryInfo is host and process memory in MiB.
type MemoryInfo struct {
	TotalMemoryMB     float64 `json:"total_memory_mb"`
	UsedMemoryMB      float64 `json:"used_memory_mb"`
	AvailableMemoryMB float64 `json:"available_memory_mb"`
	ProcessMemoryMB   float64 `json:"process_memory_mb"`
}

// DatabaseHealth is the result of the database ping.
type DatabaseHealth struct {
	Status         string              `json:"status"`
	Driver         string              `json:"driver,omitempty"`
	ResponseTimeMS float64             `json:"response_time_ms"`
	Pool           *database.PoolStats `json:"pool,omitempty"`
	Error          string              `json:"error,omitempty"`
}

// HealthComponents groups per-dependency status.
type HealthComponents struct {
	Database        DatabaseHealth                    `json:"database"`
	ImageSources    []models.ImageSource              `json:"image_sources"`
	CircuitBreakers []httpclient.CircuitBreakerStatus `json:"circuit_breakers"`
	Jobs            []scheduler.JobStatus             `json:"jobs,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string           `json:"status"`
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	Uptime        string           `json:"uptime"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	CPU           CPUInfo          `json:"cpu"`
	Memory        MemoryInfo       `json:"memory"`
	Components    HealthComponents `json:"components"`
}

// HealthInput is the input for the health check endpoint.
type HealthInput struct{}

// HealthOutput is the output for the health check endpoint.
type HealthOutput struct {
	Body HealthResponse
}

// Register registers the health routes with the API.
func (h *HealthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns service status, host metrics, database reachability and provider circuit breakers",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// GetHealth returns the health status of the service. The status is
// "degraded" when the database is unreachable or a provider circuit is open.
func (h *HealthHandler) GetHealth(ctx context.Context, _ *HealthInput) (*HealthOutput, error) {
	now := time.Now()
	uptime := now.Sub(h.startTime)

	components := HealthComponents{
		Database:        h.getDatabaseHealth(ctx),
		ImageSources:    []models.ImageSource{},
		CircuitBreakers: []httpclient.CircuitBreakerStatus{},
	}
	if h.sources != nil {
		components.ImageSources = h.sources.Sources()
	}
	if h.clients != nil {
		components.CircuitBreakers = h.clients.GetCircuitBreakerStatuses()
	}
	if h.jobs != nil {
		components.Jobs = h.jobs.Jobs()
	}

	status := "healthy"
	if components.Database.Status == "error" {
		status = "degraded"
	}
	for _, cb := range components.CircuitBreakers {
		if cb.State == httpclient.CircuitOpen.String() {
			status = "degraded"
		}
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:        status,
			Timestamp:     now.UTC().Format(time.RFC3339),
			Version:       h.version,
			Uptime:        uptime.Round(time.Second).String(),
			UptimeSeconds: uptime.Seconds(),
			CPU:           getCPUInfo(),
			Memory:        getMemoryInfo(),
			Components:    components,
		},
	}, nil
}

func getCPUInfo() CPUInfo {
	info := CPUInfo{Cores: runtime.NumCPU()}

	loadAvg, err := load.Avg()
	if err == nil && loadAvg != nil {
		info.Load1Min = loadAvg.Load1
		info.Load5Min = loadAvg.Load5
		info.Load15Min = loadAvg.Load15
		if info.Cores > 0 {
			info.LoadPercentage1Min = (loadAvg.Load1 / float64(info.Cores)) * 100
		}
	}
	return info
}

func getMemoryInfo() MemoryInfo {
	const mib = 1024 * 1024
	info := MemoryInfo{}

	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		info.TotalMemoryMB = float64(vm.Total) / mib
		info.UsedMemoryMB = float64(vm.Used) / mib
		info.AvailableMemoryMB = float64(vm.Available) / mib
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if m, err := proc.MemoryInfo(); err == nil && m != nil {
			info.ProcessMemoryMB = float64(m.RSS) / mib
		}
	}
	return info
}

func (h *HealthHandler) getDatabaseHealth(ctx context.Context) DatabaseHealth {
	if h.db == nil {
		return DatabaseHealth{Status: "not_configured"}
	}

	start := time.Now()
	err := h.db.Ping(ctx)
	health := DatabaseHealth{
		Status:         "ok",
		ResponseTimeMS: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
	}
	if pr, ok := h.db.(poolReporter); ok {
		health.Driver = pr.Driver()
		if stats, err := pr.PoolStats(); err == nil {
			health.Pool = &stats
		}
	}
	return health
}
