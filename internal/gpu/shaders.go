package gpu

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/gogpu/naga"
)

//go:embed shaders/keccak.wgsl
var keccakShaderTemplate string

var keccakTemplateOnce = sync.OnceValues(func() (*template.Template, error) {
	return template.New("keccak.wgsl").Parse(keccakShaderTemplate)
})

// renderKeccakSource specializes the Keccak shader source for the given
// domain-separation byte (0x06 for fixed SHA3 variants, 0x1F for SHAKE),
// baking it in as a WGSL compile-time constant.
func renderKeccakSource(domainByte byte) (string, error) {
	tmpl, err := keccakTemplateOnce()
	if err != nil {
		return "", fmt.Errorf("gpu: parse keccak shader template: %w", err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, struct{ DomainByte byte }{domainByte}); err != nil {
		return "", fmt.Errorf("gpu: render keccak shader for domain byte 0x%02x: %w", domainByte, err)
	}
	return buf.String(), nil
}

// compileToSPIRV compiles WGSL source to a SPIR-V word stream via naga,
// mirroring the compile step used by the other gogpu GPU backends.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
