package policy

import (
	"testing"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func TestCanUseTool_DenyOverridesAllow(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{
		AllowedTools:    []string{"*"},
		DisallowedTools: []string{"bash"},
	}})
	require.NoError(t, err)

	require.True(t, e.CanUseTool("read").Allowed)
	require.False(t, e.CanUseTool("bash").Allowed)
}

func TestCanUseTool_EmptyAllowedMeansAllowAll(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{}})
	require.NoError(t, err)

	require.True(t, e.CanUseTool("anything").Allowed)
}

func TestCanUseTool_NonEmptyAllowedRestricts(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{AllowedTools: []string{"read", "glob"}}})
	require.NoError(t, err)

	require.True(t, e.CanUseTool("read").Allowed)
	require.False(t, e.CanUseTool("bash").Allowed)
}

func TestCanUseTool_RequiresApproval(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{
		AllowedTools:       []string{"*"},
		RequireApprovalFor: []string{"bash"},
	}})
	require.NoError(t, err)

	d := e.CanUseTool("bash")
	require.True(t, d.Allowed)
	require.True(t, d.RequiresApproval)
}

func TestCanReadWritePath_GlobDeny(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{
		DenyRead:  []string{"secrets/**"},
		DenyWrite: []string{"**/*.lock"},
	}})
	require.NoError(t, err)

	require.False(t, e.CanReadPath("secrets/key.pem").Allowed)
	require.True(t, e.CanReadPath("src/main.go").Allowed)
	require.False(t, e.CanWritePath("go.sum.lock").Allowed)
}

func TestCanAccessNetwork_AllowListRequiresMatch(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{
		AllowNetwork: []string{"*.github.com", "api.anthropic.com"},
	}})
	require.NoError(t, err)

	require.True(t, e.CanAccessNetwork("api.anthropic.com").Allowed)
	require.True(t, e.CanAccessNetwork("raw.github.com").Allowed)
	require.False(t, e.CanAccessNetwork("evil.example.com").Allowed)
}

func TestCanAccessNetwork_DenyOverridesAllow(t *testing.T) {
	t.Parallel()

	e, err := New(Options{Profile: contract.PolicyProfile{
		AllowNetwork: []string{"*"},
		DenyNetwork:  []string{"internal.corp"},
	}})
	require.NoError(t, err)

	require.False(t, e.CanAccessNetwork("internal.corp").Allowed)
	require.True(t, e.CanAccessNetwork("example.com").Allowed)
}

func TestEngine_RecordsToAuditor(t *testing.T) {
	t.Parallel()

	auditor := &RecordingAuditor{}
	e, err := New(Options{
		Profile: contract.PolicyProfile{DisallowedTools: []string{"bash"}},
		Auditor: auditor,
	})
	require.NoError(t, err)

	e.CanUseTool("bash")
	e.CanReadPath("a.go")

	require.Len(t, auditor.Entries, 2)
	require.Equal(t, "can_use_tool", auditor.Entries[0].Check)
	require.False(t, auditor.Entries[0].Decision.Allowed)
	require.Equal(t, "can_read_path", auditor.Entries[1].Check)
	require.True(t, auditor.Entries[1].Decision.Allowed)
}
