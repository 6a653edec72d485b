package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fxgurv/ALONE/generation"
)

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays what the application started with.
type Summary struct {
	serviceName     string
	version         string
	out             io.Writer
	startupDuration time.Duration
	routes          []RouteInfo
}

// NewSummary creates a summary that prints to out. A nil out disables it.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         out,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{Method: method, Path: path, Handler: handler})
}

// Display prints the providers registered on d and the tracked routes.
func (s *Summary) Display(ctx context.Context, d *generation.Dispatcher) {
	if s.out == nil {
		return
	}
	version := s.version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(s.out, "\n%s %s started in %.2fs\n\n", s.serviceName, version, s.startupDuration.Seconds())

	if d != nil {
		infos := d.Providers(ctx)
		fmt.Fprintf(s.out, "Providers (%d)\n", len(infos))
		ready := 0
		for i, p := range infos {
			icon := "✅"
			if p.Available {
				ready++
			} else {
				icon = "⏸️"
			}
			fmt.Fprintf(s.out, "   %s %s %-13s %-9s %s\n", treePrefix(i, len(infos)), icon, p.ID, p.Kind, strings.Join(p.Models, ", "))
		}
		fmt.Fprintf(s.out, "\n%d/%d providers have credentials\n", ready, len(infos))
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(s.out, "\nRoutes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(s.out, "   %s %-7s %s → %s\n", treePrefix(i, len(s.routes)), r.Method, r.Path, r.Handler)
		}
	}
	fmt.Fprintf(s.out, "\n")
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}
