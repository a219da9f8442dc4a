//go:build fuzz
// +build fuzz

package codec

import (
	"errors"
	"reflect"
	"testing"
)

// FuzzRecordCodec_RoundTrip tests encode/decode round-trip with random inputs
func FuzzRecordCodec_RoundTrip(f *testing.F) {
	codec := NewRecordCodec()

	f.Add(int64(0), "value1", "value2")
	f.Add(int64(1), "", "")
	f.Add(int64(42), "a;b", "c")
	f.Add(int64(7), "line\nbreak", "ok")

	f.Fuzz(func(t *testing.T, id int64, a, b string) {
		values := []string{a, b}

		line, err := codec.Encode(id, values)
		if err != nil {
			if errors.Is(err, ErrInvalidValue) || errors.Is(err, ErrMalformedRecord) {
				t.Skip("input not encodable")
			}
			t.Fatalf("Encode failed: %v", err)
		}

		record, err := codec.Decode(line)
		if err != nil {
			t.Fatalf("Decode failed for %q: %v", line, err)
		}

		if record.ID != id {
			t.Errorf("ID mismatch: got %d, want %d", record.ID, id)
		}
		if !reflect.DeepEqual(record.Values, values) {
			t.Errorf("Values mismatch: got %q, want %q", record.Values, values)
		}
	})
}

// FuzzRecordCodec_Decode tests decoding arbitrary lines never panics
func FuzzRecordCodec_Decode(f *testing.F) {
	codec := NewRecordCodec()

	f.Add("0;a;b;")
	f.Add(";;;")
	f.Add("")
	f.Add("18446744073709551616;x;")

	f.Fuzz(func(t *testing.T, line string) {
		record, err := codec.Decode(line)
		if err != nil {
			return
		}
		if record.ID < 0 {
			t.Errorf("decoded negative id %d from %q", record.ID, line)
		}
	})
}
