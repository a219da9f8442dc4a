//go:build bench
// +build bench

package codec

import (
	"strings"
	"testing"
)

func BenchmarkRecordCodec_Encode(b *testing.B) {
	codec := NewRecordCodec()

	benchmarks := []struct {
		name   string
		values []string
	}{
		{
			name:   "small",
			values: []string{"value1", "value2"},
		},
		{
			name:   "medium",
			values: []string{strings.Repeat("v", 100), strings.Repeat("w", 1000)},
		},
		{
			name:   "wide",
			values: strings.Split(strings.Repeat("col,", 200), ","),
		},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Encode(int64(i), bm.values); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRecordCodec_Decode(b *testing.B) {
	codec := NewRecordCodec()
	line, err := codec.Encode(123456, []string{"value1", strings.Repeat("v", 512), "value3"})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := codec.Decode(line); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecordCodec_Matches(b *testing.B) {
	codec := NewRecordCodec()
	line := "987654;alice;bob;carol;"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		codec.Matches(line, 987654)
	}
}
