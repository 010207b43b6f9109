package gpu

import (
	"bytes"
	"testing"
)

func TestBatchParamsToBytes(t *testing.T) {
	p := BatchParams{
		NumHashes:        0x01020304,
		InputLengthBytes: 0x05060708,
		RateBytes:        0x090A0B0C,
		OutputBytes:      0x0D0E0F10,
	}
	got := p.toBytes()
	want := []byte{
		0x04, 0x03, 0x02, 0x01,
		0x08, 0x07, 0x06, 0x05,
		0x0C, 0x0B, 0x0A, 0x09,
		0x10, 0x0F, 0x0E, 0x0D,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("toBytes() = %x, want %x", got, want)
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		name      string
		numHashes uint32
		want      uint32
	}{
		{name: "single hash", numHashes: 1, want: 1},
		{name: "one under a workgroup", numHashes: 63, want: 1},
		{name: "exactly one workgroup", numHashes: 64, want: 1},
		{name: "one over a workgroup", numHashes: 65, want: 2},
		{name: "large batch", numHashes: 1000, want: 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workgroupCount(tt.numHashes); got != tt.want {
				t.Fatalf("workgroupCount(%d) = %d, want %d", tt.numHashes, got, tt.want)
			}
		})
	}
}
