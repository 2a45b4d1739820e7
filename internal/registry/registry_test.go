package registry

import (
	"testing"

	"github.com/sammcj/mcp-pdftools/internal/testutils"
	"github.com/sammcj/mcp-pdftools/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type helpTool struct {
	*testutils.MockTool
}

func (h helpTool) ProvideExtendedInfo() *tools.ExtendedHelp {
	return &tools.ExtendedHelp{WhenToUse: "testing"}
}

func TestRegistry_RegisterAndGetTool(t *testing.T) {
	r := New(testutils.CreateTestLogger(), "")
	r.Register(testutils.NewMockTool("test-tool"))

	tool, ok := r.GetTool("test-tool")
	require.True(t, ok)
	assert.Equal(t, "test-tool", tool.Definition().Name)

	_, ok = r.GetTool("non-existent-tool")
	assert.False(t, ok)
}

func TestRegistry_DisabledTools(t *testing.T) {
	r := New(testutils.CreateTestLogger(), " tool-1 , ,tool-3")
	for _, name := range []string{"tool-1", "tool-2", "tool-3"} {
		r.Register(testutils.NewMockTool(name))
	}

	assert.Equal(t, []string{"tool-2"}, r.GetToolNames())
	_, ok := r.GetTool("tool-1")
	assert.False(t, ok)
	assert.Len(t, r.GetTools(), 1)
}

func TestRegistry_ToolNamesWithExtendedHelp(t *testing.T) {
	r := New(testutils.CreateTestLogger(), "")
	r.Register(testutils.NewMockTool("plain"))
	r.Register(helpTool{testutils.NewMockTool("zeta")})
	r.Register(helpTool{testutils.NewMockTool("alpha")})

	assert.Equal(t, []string{"alpha", "zeta"}, r.GetToolNamesWithExtendedHelp())
	assert.Equal(t, []string{"alpha", "plain", "zeta"}, r.GetToolNames())
}

func TestParseDisabledTools(t *testing.T) {
	assert.Empty(t, parseDisabledTools(""))
	assert.Equal(t, map[string]bool{"a": true, "b": true}, parseDisabledTools("a,b,a"))
}
