package checks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"subpub/config"
	"subpub/domain"

	"github.com/shirou/gopsutil/process"
)

type ProcessOptions struct {
	Options `yaml:",inline"`
	// Pid defaults to the running subpub process.
	Pid int32 `yaml:"pid" validate:"gte=0"`
	// MaxRSS silences the check while the resident memory stays at or below it, in bytes.
	MaxRSS uint64 `yaml:"max_rss"`
}

// Process reports the memory and CPU usage of a process.
type Process struct {
	*Base
	pid    int32
	maxRSS uint64
	stats  func(ctx context.Context, pid int32) (rss uint64, cpu float64, err error)
}

func NewProcess(log *slog.Logger, options map[string]any) (*Process, error) {
	var opts ProcessOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	base, err := NewBase(log, "process", opts.Options)
	if err != nil {
		return nil, err
	}
	pid := opts.Pid
	if pid == 0 {
		pid = int32(os.Getpid())
	}
	base.SetDefault(domain.FieldType, "Process")
	base.SetDefault(domain.FieldName, strconv.Itoa(int(pid)))
	base.SetDefault(domain.FieldWeight, 1)
	base.SetDefault(domain.FieldLocation, fmt.Sprintf("pid:%d", pid))

	return &Process{
		Base:   base,
		pid:    pid,
		maxRSS: opts.MaxRSS,
		stats:  selfStats,
	}, nil
}

func (p *Process) Run(ctx context.Context) ([]domain.Fields, error) {
	rss, cpu, err := p.stats(ctx, p.pid)
	if err != nil {
		return nil, fmt.Errorf("process %d: %w", p.pid, err)
	}
	if p.maxRSS > 0 && rss <= p.maxRSS {
		return nil, nil
	}
	return []domain.Fields{{
		domain.FieldBody:       fmt.Sprintf("rss=%d cpu=%.1f%%", rss, cpu),
		domain.FieldAttributes: map[string]any{"rss": rss, "cpu": cpu},
	}}, nil
}

// selfStats retrieves the resident memory and CPU usage of the given process.
func selfStats(ctx context.Context, pid int32) (uint64, float64, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return 0, 0, err
	}
	memInfo, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
