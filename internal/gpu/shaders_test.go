package gpu

import (
	"strings"
	"testing"
)

func TestRenderKeccakSource(t *testing.T) {
	tests := []struct {
		name       string
		domainByte byte
		wantConst  string
	}{
		{name: "sha3 domain", domainByte: 0x06, wantConst: "const DOMAIN_BYTE: u32 = 6u;"},
		{name: "shake domain", domainByte: 0x1F, wantConst: "const DOMAIN_BYTE: u32 = 31u;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := renderKeccakSource(tt.domainByte)
			if err != nil {
				t.Fatalf("renderKeccakSource(0x%02x) = %v", tt.domainByte, err)
			}
			if !strings.Contains(src, tt.wantConst) {
				t.Errorf("rendered source is missing %q", tt.wantConst)
			}
			if strings.Contains(src, "{{") {
				t.Error("rendered source still contains template markers")
			}
		})
	}
}

func TestRenderKeccakSourceStructure(t *testing.T) {
	src, err := renderKeccakSource(0x06)
	if err != nil {
		t.Fatal(err)
	}

	// The shader's declared workgroup size must agree with the host-side
	// dispatch math in workgroupCount.
	if !strings.Contains(src, "@workgroup_size(64)") {
		t.Error("shader does not declare workgroup size 64")
	}

	// The three bindings the pipeline layout declares.
	for _, binding := range []string{
		"@group(0) @binding(0) var<uniform> params",
		"@group(0) @binding(1) var<storage, read> inputs",
		"@group(0) @binding(2) var<storage, read_write> outputs",
	} {
		if !strings.Contains(src, binding) {
			t.Errorf("shader is missing binding declaration %q", binding)
		}
	}
}
