package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-mfdetect/dsp/resample"
)

func ExampleToRate() {
	in := make([]float64, 1000)
	out, _ := resample.ToRate(in, 100, 20)
	fmt.Printf("in=%d out=%d\n", len(in), len(out))
	// Output:
	// in=1000 out=200
}

func ExampleNewForRates() {
	r, _ := resample.NewForRates(100, 40)
	up, down := r.Ratio()
	fmt.Printf("ratio=%d/%d\n", up, down)
	// Output:
	// ratio=2/5
}
