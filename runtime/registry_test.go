package runtime

import (
	"testing"

	"github.com/agentbackplane/abp/contract"
	"github.com/stretchr/testify/require"
)

func TestBackendRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := NewBackendRegistry()
	backend := &fakeBackend{manifest: contract.CapabilityManifest{contract.CapStreaming: contract.Native()}}

	require.NoError(t, reg.Register("openai", backend))
	got, err := reg.Get("openai")
	require.NoError(t, err)
	require.Same(t, backend, got.(*fakeBackend))
}

func TestBackendRegistry_RegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	reg := NewBackendRegistry()
	backend := &fakeBackend{}
	require.NoError(t, reg.Register("openai", backend))
	require.Error(t, reg.Register("openai", backend))
}

func TestBackendRegistry_GetUnknownFails(t *testing.T) {
	t.Parallel()

	reg := NewBackendRegistry()
	_, err := reg.Get("nope")
	require.Error(t, err)
}

func TestBackendRegistry_NamesPreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewBackendRegistry()
	require.NoError(t, reg.Register("zeta", &fakeBackend{}))
	require.NoError(t, reg.Register("alpha", &fakeBackend{}))

	require.Equal(t, []string{"zeta", "alpha"}, reg.Names())
}

func TestBackendRegistry_CapabilitiesKeyedByName(t *testing.T) {
	t.Parallel()

	reg := NewBackendRegistry()
	manifest := contract.CapabilityManifest{contract.CapStreaming: contract.Native()}
	require.NoError(t, reg.Register("openai", &fakeBackend{manifest: manifest}))

	caps := reg.Capabilities()
	require.Equal(t, manifest, caps["openai"])
}
