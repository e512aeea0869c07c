//go:build !linux

// Package serde handles encoding and decoding of the shim wire format.
package serde

import "github.com/ugorji/go/codec"

var jsonHandle = func() *codec.JsonHandle {
	handle := &codec.JsonHandle{}
	handle.MapKeyAsString = true

	return handle
}()

// MarshalJson marshals a value to the shim's JSON wire format.
func MarshalJson(v any) ([]byte, error) {
	var out []byte

	err := codec.NewEncoderBytes(&out, jsonHandle).Encode(v)

	return out, err
}

// UnmarshalJson unmarshals a value from the shim's JSON wire format.
func UnmarshalJson(data []byte, v any) error {
	return codec.NewDecoderBytes(data, jsonHandle).Decode(v)
}
