package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestDefaultDeviceOptions(t *testing.T) {
	opts := DefaultDeviceOptions()
	if !opts.PreferDiscrete {
		t.Error("DefaultDeviceOptions().PreferDiscrete = false, want true")
	}
	if opts.AdapterIndex != -1 {
		t.Errorf("DefaultDeviceOptions().AdapterIndex = %d, want -1", opts.AdapterIndex)
	}
}

// mockDevice implements gpucontext.Device for testing.
type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

// mockQueue implements gpucontext.Queue for testing.
type mockQueue struct{}

// mockAdapter implements gpucontext.Adapter for testing.
type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider but not the HAL
// accessor methods OpenFromProvider needs.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

func TestOpenFromProviderRequiresHALAccessors(t *testing.T) {
	_, err := OpenFromProvider(&mockProvider{})
	if err == nil {
		t.Fatal("OpenFromProvider should fail for a provider without HalDevice/HalQueue")
	}
	if !errors.Is(err, ErrNoAdapter) {
		t.Fatalf("OpenFromProvider error = %v, want ErrNoAdapter", err)
	}
}

func TestDeviceCloseNil(t *testing.T) {
	var d *Device
	d.Close() // must not panic
}
