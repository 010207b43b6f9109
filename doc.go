// Package sha3gpu runs the SHA-3 family (FIPS 202) on the GPU: SHA3-224,
// SHA3-256, SHA3-384, SHA3-512, and the two SHAKE extendable-output
// functions, dispatched as a Keccak-f[1600] WGSL compute shader over a
// batch of equal-length inputs.
//
// A Context owns the GPU instance, device, and the compiled Keccak
// pipelines (one per domain-separation byte); it is safe for concurrent use
// by multiple Hashers. A Hasher is bound to one Variant and packs,
// dispatches, and unpacks one batch per HashBatch call — there is no
// persistent GPU state beyond the Context's cached pipelines.
package sha3gpu
