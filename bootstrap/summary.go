package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/iockit/component"
	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/scope"
	"github.com/kbukum/iockit/version"
)

// RouteInfo represents a registered HTTP route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	routes          []RouteInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker writing to stdout.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		routes:      make([]RouteInfo, 0),
		out:         os.Stdout,
	}
}

// SetOutput redirects the summary.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackRoute records an HTTP route.
func (s *Summary) TrackRoute(method, path, handler string) {
	s.routes = append(s.routes, RouteInfo{
		Method:  method,
		Path:    path,
		Handler: handler,
	})
}

// DisplaySummary prints the generation, the managed definitions with their
// dependencies, the scopes and hooks, and the live health of c.
func (s *Summary) DisplaySummary(ctx context.Context, c *di.Container) {
	w := s.out
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())
	if c == nil {
		fmt.Fprintf(w, "\n")
		return
	}
	fmt.Fprintf(w, "   build %s\n", version.Get())
	fmt.Fprintf(w, "   generation %s (%s)\n\n", c.Generation(), c.State())

	regs := c.Registrations()
	fmt.Fprintf(w, "📦 Definitions (%d)\n", len(regs))
	for i, r := range regs {
		last := i == len(regs)-1
		fmt.Fprintf(w, "   %s %s %s [%s]%s%s\n",
			branch(last), definitionIcon(r), r.Name, r.Scope, flags(r), describe(c, r.Name))
		for j, dep := range r.Dependencies {
			fmt.Fprintf(w, "   %s %s 🔗 %s\n", indent(last), branch(j == len(r.Dependencies)-1), dep)
		}
	}

	names := c.ScopeNames()
	fmt.Fprintf(w, "\n🗂️  Scopes\n")
	for i, name := range names {
		fmt.Fprintf(w, "   %s %s\n", branch(i == len(names)-1), name)
	}

	if hooks := c.Hooks(); len(hooks) > 0 {
		fmt.Fprintf(w, "\n🪝 Hooks (%d)\n", len(hooks))
		for i, h := range hooks {
			fmt.Fprintf(w, "   %s %T\n", branch(i == len(hooks)-1), h)
		}
	}

	if len(s.routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(s.routes))
		for i, r := range s.routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i == len(s.routes)-1), r.Method, r.Path, r.Handler)
		}
	}

	if health := c.Health(ctx); len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = fmt.Sprintf(" (%s)", h.Message)
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n",
				branch(i == len(health)-1), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
	}

	fmt.Fprintf(w, "\n")
}

func branch(last bool) string {
	if last {
		return "└──"
	}
	return "├──"
}

func indent(last bool) string {
	if last {
		return "   "
	}
	return "│  "
}

func flags(r di.RegistrationInfo) string {
	var f []string
	if r.Primary {
		f = append(f, "primary")
	}
	if r.Hook {
		f = append(f, "hook")
	}
	if len(r.Aliases) > 0 {
		f = append(f, "aka "+strings.Join(r.Aliases, ","))
	}
	if len(f) == 0 {
		return ""
	}
	return " (" + strings.Join(f, "; ") + ")"
}

// describe returns the description of a live Describable singleton.
func describe(c *di.Container, name string) string {
	v, ok := c.Instance(name)
	if !ok {
		return ""
	}
	d, ok := v.(component.Describable)
	if !ok {
		return ""
	}
	desc := d.Describe()
	if desc.Type != "" {
		return fmt.Sprintf(": %s %s", desc.Type, desc.Details)
	}
	return ": " + desc.Details
}

func definitionIcon(r di.RegistrationInfo) string {
	switch {
	case r.Initialized:
		return "✅"
	case r.Lazy && r.Scope == scope.Singleton:
		return "⚡"
	case r.Scope != scope.Singleton:
		return "🔁"
	default:
		return "⏸️"
	}
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
