// Package health probes the service's dependencies and samples host
// resource usage for the health endpoint.
package health

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Status is one dependency's probe result.
type Status struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// SystemStats is a point-in-time host resource sample.
type SystemStats struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
	MemUsedMB  uint64  `json:"mem_used_mb"`
}

// Report is the full health payload.
type Report struct {
	Status   string      `json:"status"`
	Database Status      `json:"database"`
	Redis    Status      `json:"redis"`
	System   SystemStats `json:"system"`
	Uptime   string      `json:"uptime"`
}

// Checker probes the database and redis and samples the host.
type Checker struct {
	db      *sqlx.DB
	rdb     *redis.Client
	started time.Time
}

func NewChecker(db *sqlx.DB, rdb *redis.Client) *Checker {
	return &Checker{db: db, rdb: rdb, started: time.Now()}
}

// Check runs all probes. The overall status is "ok" only when the
// database answers; redis is optional and degrades the status rather
// than failing it.
func (c *Checker) Check(ctx context.Context) Report {
	r := Report{
		Database: c.checkDatabase(ctx),
		Redis:    c.checkRedis(ctx),
		System:   sampleSystem(),
		Uptime:   time.Since(c.started).Round(time.Second).String(),
	}
	switch {
	case !r.Database.OK:
		r.Status = "unhealthy"
	case !r.Redis.OK:
		r.Status = "degraded"
	default:
		r.Status = "ok"
	}
	return r
}

func (c *Checker) checkDatabase(ctx context.Context) Status {
	if c.db == nil {
		return Status{OK: false, Detail: "not configured"}
	}
	if err := c.db.PingContext(ctx); err != nil {
		return Status{OK: false, Detail: err.Error()}
	}
	return Status{OK: true}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.rdb == nil {
		return Status{OK: false, Detail: "not configured"}
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return Status{OK: false, Detail: err.Error()}
	}
	return Status{OK: true}
}

func sampleSystem() SystemStats {
	var stats SystemStats
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemPercent = vm.UsedPercent
		stats.MemUsedMB = vm.Used / 1024 / 1024
	}
	return stats
}
