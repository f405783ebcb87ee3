package observability

import (
	"strings"

	"github.com/mssola/useragent"
)

// UserAgentSummary is the coarse client description attached to security logs.
type UserAgentSummary struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// DescribeUserAgent parses a User-Agent header. Empty input yields "unknown" fields.
func DescribeUserAgent(userAgentString string) UserAgentSummary {
	if strings.TrimSpace(userAgentString) == "" {
		return UserAgentSummary{Browser: "unknown", OS: "unknown"}
	}

	ua := useragent.New(userAgentString)
	browser, _ := ua.Browser()
	os := ua.OS()
	if browser == "" {
		browser = "unknown"
	}
	if os == "" {
		os = "unknown"
	}
	return UserAgentSummary{
		Browser: browser,
		OS:      os,
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// LogAttrs returns the summary as slog key/value pairs.
func (s UserAgentSummary) LogAttrs() []any {
	return []any{"ua_browser", s.Browser, "ua_os", s.OS, "ua_mobile", s.Mobile, "ua_bot", s.Bot}
}
