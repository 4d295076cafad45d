package middleware

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	VersionActive     = "active"
	VersionDeprecated = "deprecated"
)

// APIVersion describes one published API version
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"`
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware tags responses with the API version serving them
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {Version: "v1", Status: VersionActive, Message: "Current stable API version"},
		},
		defaultVersion: "v1",
	}
}

// VersionRoute creates the route group for version with its headers applied
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string) *echo.Group {
	group := e.Group("/" + version)
	group.Use(vm.VersionHeader(version))
	return group
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set("X-API-Version", version)

			if ver, exists := vm.supportedVersions[version]; exists {
				if ver.Status == VersionDeprecated {
					header.Set("X-API-Deprecated", "true")
					if ver.SunsetDate != nil {
						header.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
						header.Set("Warning", "299 restopos \"This API version is deprecated and will be removed on "+ver.SunsetDate.Format("2006-01-02")+"\"")
					}
				}
				if ver.Message != "" {
					header.Set("X-API-Message", ver.Message)
				}
			}

			return next(c)
		}
	}
}

// APIVersionResolver rejects unknown /vN prefixes and records the version
// serving the request under "api_version"
func (vm *VersionMiddleware) APIVersionResolver() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			version := extractVersionFromPath(c.Request().URL.Path)
			if version == "" {
				c.Set("api_version", vm.defaultVersion)
				return next(c)
			}
			if _, supported := vm.supportedVersions[version]; !supported {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error":              "Unsupported API version",
					"supported_versions": strings.Join(vm.SupportedVersions(), ", "),
				})
			}
			c.Set("api_version", version)
			return next(c)
		}
	}
}

// extractVersionFromPath returns "vN" for paths starting with /vN/ or equal to /vN
func extractVersionFromPath(path string) string {
	segment := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	if len(segment) < 2 || segment[0] != 'v' {
		return ""
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return ""
		}
	}
	if segment[1] == '0' {
		return ""
	}
	return segment
}

// SupportedVersions lists the versions still served, sorted
func (vm *VersionMiddleware) SupportedVersions() []string {
	versions := make([]string, 0, len(vm.supportedVersions))
	for version, info := range vm.supportedVersions {
		if info.Status == VersionActive || info.Status == VersionDeprecated {
			versions = append(versions, version)
		}
	}
	sort.Strings(versions)
	return versions
}

// AddVersion registers a version with its status
func (vm *VersionMiddleware) AddVersion(version, status, message string, sunsetDate *time.Time) {
	vm.supportedVersions[version] = APIVersion{
		Version:    version,
		Status:     status,
		SunsetDate: sunsetDate,
		Message:    message,
	}
}
