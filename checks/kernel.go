package checks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"subpub/config"
	"subpub/domain"
	"subpub/sources"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/host"
)

const kernelLocation = "http://www.kernel.org/"

type KernelOptions struct {
	Options `yaml:",inline"`
	// Releases locates a kernel.org releases.json document. Without it the
	// check reports the running kernel.
	Releases     string `yaml:"releases"`
	Parser       string `yaml:"parser" validate:"omitempty,oneof=yaml json"`
	Moniker      string `yaml:"moniker" validate:"omitempty,oneof=mainline stable longterm linux-next"`
	Show         int    `yaml:"show" validate:"gte=0,lte=9"`
	CheckCurrent bool   `yaml:"check_current"`
	// Expect silences the running kernel report while it matches.
	Expect       string `yaml:"expect"`
}

type release struct {
	Moniker string `yaml:"moniker"`
	Version string `yaml:"version"`
}

type releasesDocument struct {
	Releases []release `yaml:"releases"`
}

// Kernel reports either the latest releases of a kernel.org channel or the
// version of the running kernel.
type Kernel struct {
	*Base
	releases     *sources.Flatfile
	moniker      string
	show         int
	checkCurrent bool
	expect       string
	version      func(ctx context.Context) (string, error)
}

func NewKernel(log *slog.Logger, options map[string]any) (*Kernel, error) {
	var opts KernelOptions
	if err := config.Decode(options, &opts); err != nil {
		return nil, err
	}
	base, err := NewBase(log, "kernel", opts.Options)
	if err != nil {
		return nil, err
	}

	kernel := &Kernel{
		Base:         base,
		moniker:      opts.Moniker,
		show:         max(opts.Show, 1),
		checkCurrent: opts.CheckCurrent,
		expect:       opts.Expect,
		version:      host.KernelVersionWithContext,
	}
	if opts.Releases != "" {
		parser := opts.Parser
		if parser == "" {
			parser = "json"
		}
		kernel.releases, err = sources.NewFlatfile(sources.FlatfileOptions{Location: opts.Releases, Parser: parser})
		if err != nil {
			return nil, err
		}
		if kernel.moniker == "" {
			kernel.moniker = "stable"
		}
	} else if kernel.moniker == "" {
		kernel.moniker = "running"
	}

	base.SetDefault(domain.FieldType, "Kernel")
	base.SetDefault(domain.FieldName, kernel.moniker)
	base.SetDefault(domain.FieldWeight, 1)
	base.SetDefault(domain.FieldLocation, kernelLocation)
	return kernel, nil
}

func (k *Kernel) Run(ctx context.Context) ([]domain.Fields, error) {
	if k.releases == nil {
		return k.running(ctx)
	}
	if err := k.releases.Run(); err != nil {
		return nil, err
	}
	var doc releasesDocument
	if err := k.releases.Decode(&doc); err != nil {
		return nil, fmt.Errorf("kernel releases: %w", err)
	}
	matches := lo.FilterMap(doc.Releases, func(r release, _ int) (string, bool) {
		return r.Version, r.Moniker == k.moniker
	})

	if k.checkCurrent {
		current, err := k.current(ctx)
		if err != nil {
			return nil, err
		}
		if slices.Contains(matches, current) {
			return nil, nil
		}
	}
	return lo.Map(lo.Subset(matches, 0, uint(k.show)), func(version string, _ int) domain.Fields {
		return domain.Fields{domain.FieldBody: version}
	}), nil
}

func (k *Kernel) running(ctx context.Context) ([]domain.Fields, error) {
	version, err := k.version(ctx)
	if err != nil {
		return nil, fmt.Errorf("kernel version: %w", err)
	}
	version = strings.TrimSpace(version)
	if k.expect != "" && version == k.expect {
		return nil, nil
	}
	return []domain.Fields{{domain.FieldBody: version}}, nil
}

// current returns the running kernel in the kernel.org notation:
// "6.7.1-arch1" is "6.7.1", "6.8.0" is "6.8" and "6.8.0-rc3" is "6.8-rc3".
func (k *Kernel) current(ctx context.Context) (string, error) {
	version, err := k.version(ctx)
	if err != nil {
		return "", fmt.Errorf("kernel version: %w", err)
	}
	version, _, _ = strings.Cut(strings.TrimSpace(version), "_")
	version, suffix, _ := strings.Cut(version, "-")
	if parts := strings.Split(version, "."); len(parts) == 3 && parts[2] == "0" {
		version = parts[0] + "." + parts[1]
	}
	if strings.HasPrefix(suffix, "rc") {
		version += "-" + suffix
	}
	return version, nil
}
