package batch

import (
	"encoding"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

var (
	_ json.Marshaler             = ID(0)
	_ json.Unmarshaler           = (*ID)(nil)
	_ encoding.TextMarshaler     = ID(0)
	_ encoding.TextUnmarshaler   = (*ID)(nil)
	_ encoding.BinaryMarshaler   = ID(0)
	_ encoding.BinaryUnmarshaler = (*ID)(nil)
	_ cbor.Marshaler             = ID(0)
	_ cbor.Unmarshaler           = (*ID)(nil)
)

// MarshalJSON encodes the id as a bare JSON number.
func (id ID) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

// UnmarshalJSON decodes a bare JSON number. Quoted or fractional values are
// rejected; null leaves the id unchanged.
func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("batch: decode json id %s: %w", data, err)
	}
	*id = ID(v)
	return nil
}

// MarshalText encodes the id in decimal.
func (id ID) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(id), 10), nil
}

// UnmarshalText decodes a decimal id.
func (id *ID) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("batch: decode text id %q: %w", text, err)
	}
	*id = ID(v)
	return nil
}

// MarshalBinary encodes the id as 8 big-endian bytes.
func (id ID) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, uint64(id)), nil
}

// UnmarshalBinary decodes 8 big-endian bytes.
func (id *ID) UnmarshalBinary(data []byte) error {
	if len(data) != 8 {
		return fmt.Errorf("batch: decode binary id: got %d bytes, want 8", len(data))
	}
	*id = ID(binary.BigEndian.Uint64(data))
	return nil
}

// MarshalCBOR encodes the id as a CBOR unsigned integer. Without it the
// encoder would pick MarshalBinary and emit a byte string.
func (id ID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(uint64(id))
}

// UnmarshalCBOR decodes a CBOR unsigned integer.
func (id *ID) UnmarshalCBOR(data []byte) error {
	var v uint64
	if err := cbor.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("batch: decode cbor id: %w", err)
	}
	*id = ID(v)
	return nil
}
