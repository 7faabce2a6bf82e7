package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/agbru/matcalc/internal/matrix"
)

// GoldenCase is a single product in the golden file.
type GoldenCase struct {
	N        int         `json:"n"`
	Seed     uint64      `json:"seed"`
	MaxValue int         `json:"max_value"`
	A        [][]float64 `json:"a"`
	B        [][]float64 `json:"b"`
	Product  [][]float64 `json:"product"`
}

func main() {
	outputDir := flag.String("out", "internal/matrix/testdata", "Output directory for the golden file")
	maxValue := flag.Int("max-value", 9, "Largest random element")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "products_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	// Sizes around the default threshold plus a few that need padding.
	sizes := []int{1, 2, 3, 5, 8, 16, 17, 20, 33}

	var data []GoldenCase

	fmt.Println("Generating golden data...")

	for i, n := range sizes {
		seed := uint64(i + 1)
		a, b := matrix.RandomPair[float64](n, seed, *maxValue)
		data = append(data, GoldenCase{
			N:        n,
			Seed:     seed,
			MaxValue: *maxValue,
			A:        a.Rows(),
			B:        b.Rows(),
			Product:  tripleLoop(a, b).Rows(),
		})
		fmt.Printf("Generated %dx%d product (seed %d)\n", n, n, seed)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
}

// tripleLoop is the textbook i-j-k product in float64, kept independent of
// the matrix package multipliers so it can serve as an oracle.
func tripleLoop(a, b *matrix.Dense[float64]) *matrix.Dense[float64] {
	n := a.N
	c := matrix.New[float64](n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for k := 0; k < n; k++ {
				sum += a.At(i, k) * b.At(k, j)
			}
			c.Set(i, j, sum)
		}
	}
	return c
}
