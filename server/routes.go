package server

import (
	"sort"
	"strings"

	"github.com/kbukum/edlflash/logger"
)

// Route describes one registered route.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
}

var systemPaths = map[string]bool{
	"/healthz": true,
	"/version": true,
}

// Routes returns the registered Gin routes, API routes first.
func (s *Server) Routes() []Route {
	ginRoutes := s.engine.Routes()

	sort.Slice(ginRoutes, func(i, j int) bool {
		iSys := systemPaths[ginRoutes[i].Path]
		jSys := systemPaths[ginRoutes[j].Path]
		if iSys != jSys {
			return !iSys
		}
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return methodOrder(ginRoutes[i].Method) < methodOrder(ginRoutes[j].Method)
	})

	routes := make([]Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, Route{
			Method:  r.Method,
			Path:    r.Path,
			Handler: formatHandlerName(r.Handler),
		})
	}
	return routes
}

func (s *Server) logRoutes() {
	for _, r := range s.Routes() {
		s.log.Debug("route", logger.Fields("method", r.Method, "path", r.Path, "handler", r.Handler))
	}
}

// formatHandlerName shortens Gin's handler path, e.g.
// "github.com/kbukum/edlflash/api.(*Handler).Run-fm" becomes "Handler.Run".
func formatHandlerName(fullPath string) string {
	name := strings.TrimSuffix(fullPath, "-fm")

	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")

	// Closures: "endpoint.Health.func1" -> "health"
	if strings.Contains(name, ".func") {
		parts := strings.Split(name, ".")
		for i := len(parts) - 1; i >= 0; i-- {
			if !strings.HasPrefix(parts[i], "func") {
				name = strings.ToLower(parts[i])
				break
			}
		}
	}

	// Drop a lowercase package prefix: "api.Handler.Run" -> "Handler.Run"
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 && parts[0] == strings.ToLower(parts[0]) && parts[1] != "" {
		name = parts[1]
	}
	return name
}

func methodOrder(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
