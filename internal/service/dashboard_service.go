package service

import (
	"context"
	"runtime"
	"sort"
	"time"

	"vidlink-backend/internal/apperr"
	"vidlink-backend/internal/models"
	"vidlink-backend/internal/store"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardPageSize = 100
	dashboardTopN     = 5
)

// DashboardService aggregates creator analytics and host health for admins.
type DashboardService struct {
	Videos store.VideoStore
}

// Creator sums views and watch time over every video of ownerID.
func (s *DashboardService) Creator(ctx context.Context, ownerID string) (*models.CreatorDashboard, error) {
	var all []*models.Video
	for offset := 0; ; offset += dashboardPageSize {
		page, err := s.Videos.List(ctx, models.VideoFilter{OwnerID: ownerID, Limit: dashboardPageSize, Offset: offset})
		if err != nil {
			return nil, apperr.Wrap(apperr.ActionFetchDashboard, err)
		}
		all = append(all, page...)
		if len(page) < dashboardPageSize {
			break
		}
	}

	out := &models.CreatorDashboard{TotalVideos: len(all), TopVideos: []*models.Video{}}
	for _, v := range all {
		out.TotalViews += v.Views
		out.TotalWatchSeconds += v.WatchSeconds
	}
	if out.TotalViews > 0 {
		out.AvgWatchSeconds = out.TotalWatchSeconds / float64(out.TotalViews)
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].WatchSeconds > all[j].WatchSeconds })
	if len(all) > dashboardTopN {
		all = all[:dashboardTopN]
	}
	out.TopVideos = append(out.TopVideos, all...)
	return out, nil
}

// SystemSummary is a snapshot of the host the service runs on.
type SystemSummary struct {
	Hostname      string  `json:"hostname"`
	OS            string  `json:"os"`
	Platform      string  `json:"platform"`
	UptimeSeconds uint64  `json:"uptime_seconds"`
	CPUCores      int     `json:"cpu_cores"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemTotal      uint64  `json:"mem_total"`
	MemUsed       uint64  `json:"mem_used"`
	MemPercent    float64 `json:"mem_percent"`
	Goroutines    int     `json:"goroutines"`
}

// System samples host, cpu and memory concurrently.
func (s *DashboardService) System(ctx context.Context) (*SystemSummary, error) {
	out := &SystemSummary{Goroutines: runtime.NumGoroutine()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		info, err := host.InfoWithContext(gctx)
		if err != nil {
			return err
		}
		out.Hostname, out.OS, out.Platform, out.UptimeSeconds = info.Hostname, info.OS, info.Platform, info.Uptime
		return nil
	})
	g.Go(func() error {
		vm, err := mem.VirtualMemoryWithContext(gctx)
		if err != nil {
			return err
		}
		out.MemTotal, out.MemUsed, out.MemPercent = vm.Total, vm.Used, vm.UsedPercent
		return nil
	})
	g.Go(func() error {
		cores, err := cpu.CountsWithContext(gctx, true)
		if err != nil {
			return err
		}
		// usage over ~1s
		pct, err := cpu.PercentWithContext(gctx, time.Second, false)
		if err != nil {
			return err
		}
		out.CPUCores = cores
		if len(pct) > 0 {
			out.CPUPercent = pct[0]
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.ActionFetchDashboard, err)
	}
	return out, nil
}
