package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/mcncl/jsontyper/internal/generator"
	"github.com/mcncl/jsontyper/internal/parser"
	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(rng *rand.Rand, depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      rng.Intn(100),
			"enabled":    rng.Intn(2) == 1,
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		key := fmt.Sprintf("nested_%d_%d", depth, i)
		result[key] = generateNestedJSON(rng, depth-1, width)
	}
	return result
}

// generateWideJSON creates a JSON object with many fields at the same level
func generateWideJSON(fieldCount int) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < fieldCount; i++ {
		switch i % 5 {
		case 0:
			result[fmt.Sprintf("string_field_%d", i)] = fmt.Sprintf("value_%d", i)
		case 1:
			result[fmt.Sprintf("int_field_%d", i)] = i
		case 2:
			result[fmt.Sprintf("bool_field_%d", i)] = i%2 == 0
		case 3:
			result[fmt.Sprintf("float_field_%d", i)] = float64(i) + 0.5
		case 4:
			result[fmt.Sprintf("object_field_%d", i)] = map[string]interface{}{
				"id":    i,
				"name":  fmt.Sprintf("Object %d", i),
				"value": i * 10,
			}
		}
	}

	return result
}

func generateArrayJSON(rng *rand.Rand, size int) []map[string]interface{} {
	array := make([]map[string]interface{}, size)
	for i := range array {
		array[i] = map[string]interface{}{
			"id":       i,
			"name":     fmt.Sprintf("Item %d", i),
			"value":    rng.Float64() * 100,
			"active":   i%2 == 0,
			"category": fmt.Sprintf("Category %d", i%5),
		}
	}
	return array
}

// benchmarkGenerate times parse, inference and rendering of doc for every
// target language.
func benchmarkGenerate(b *testing.B, doc interface{}) {
	data, err := json.Marshal(doc)
	require.NoError(b, err)
	text := string(data)

	for _, lang := range generator.Languages {
		builder, err := generator.NewBuilder(lang)
		require.NoError(b, err)
		gen := builder.PubAll().JSONMarshal(true).Build()

		b.Run(lang.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := gen.Generate(text, "Bench"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDeepNesting(b *testing.B) {
	depths := []struct {
		name  string
		depth int
		width int
	}{
		{"Depth3Width3", 3, 3},
		{"Depth5Width2", 5, 2},
		{"Depth2Width10", 2, 10},
	}

	for _, depth := range depths {
		b.Run(depth.name, func(b *testing.B) {
			benchmarkGenerate(b, generateNestedJSON(rand.New(rand.NewSource(42)), depth.depth, depth.width))
		})
	}
}

func BenchmarkWideStructures(b *testing.B) {
	for _, count := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("Fields%d", count), func(b *testing.B) {
			benchmarkGenerate(b, generateWideJSON(count))
		})
	}
}

func BenchmarkArrayProcessing(b *testing.B) {
	for _, size := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("Array%d", size), func(b *testing.B) {
			benchmarkGenerate(b, generateArrayJSON(rand.New(rand.NewSource(42)), size))
		})
	}
}

func BenchmarkParseOnly(b *testing.B) {
	data, err := json.Marshal(generateArrayJSON(rand.New(rand.NewSource(7)), 1000))
	require.NoError(b, err)

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := parser.ParseBytes(data); err != nil {
			b.Fatal(err)
		}
	}
}
