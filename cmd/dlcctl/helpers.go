package main

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

func newByteBuffer() *bytes.Buffer {
	return new(bytes.Buffer)
}

func chainhashFromSeed(seed [32]byte) chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], seed[:])
	return h
}

// randSerialID draws a caller-assigned input/output ordering nonce; real
// callers are free to use any source, spec.md only requires it be unique
// per party per contract.
func randSerialID() uint64 {
	var b [8]byte
	rand.Read(b[:])
	return binary.BigEndian.Uint64(b[:])
}
