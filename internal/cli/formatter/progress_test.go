package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{0, "[░░░░░░░░░░]   0%"},
		{45, "[████░░░░░░]  45%"},
		{100, "[██████████] 100%"},
		{150, "[██████████] 100%"},
		{-5, "[░░░░░░░░░░]   0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripANSI(RenderProgress(tt.pct, 10)))
	}
}

func TestRenderAchievementBar(t *testing.T) {
	plain := func(s ...string) string { return strings.Join(s, "") }
	assert.Equal(t, "████", RenderAchievementBar(1.2, 4, plain))
	assert.Equal(t, "██░░", RenderAchievementBar(0.5, 4, plain))
	assert.Equal(t, "░░", RenderAchievementBar(-1, 1, plain), "width clamps to 2")
}
