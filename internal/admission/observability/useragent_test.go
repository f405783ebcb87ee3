package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeUserAgent(t *testing.T) {
	t.Run("desktop chrome", func(t *testing.T) {
		got := DescribeUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		assert.Equal(t, "Chrome", got.Browser)
		assert.Contains(t, got.OS, "Windows")
		assert.False(t, got.Mobile)
	})

	t.Run("bot", func(t *testing.T) {
		got := DescribeUserAgent("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
		assert.True(t, got.Bot)
	})

	t.Run("empty", func(t *testing.T) {
		got := DescribeUserAgent("   ")
		assert.Equal(t, UserAgentSummary{Browser: "unknown", OS: "unknown"}, got)
	})
}

func TestUserAgentSummaryLogAttrs(t *testing.T) {
	attrs := UserAgentSummary{Browser: "Firefox", OS: "Linux"}.LogAttrs()
	assert.Equal(t, []any{"ua_browser", "Firefox", "ua_os", "Linux", "ua_mobile", false, "ua_bot", false}, attrs)
}
