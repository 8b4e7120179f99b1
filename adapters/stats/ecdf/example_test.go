package ecdf_test

import (
	"fmt"

	"kstest/adapters/stats/ecdf"
	"kstest/adapters/stats/order"
)

func ExampleEfficient_Distance() {
	cmp := ecdf.NewEfficient[int64](order.Natural[int64]{})

	d, err := cmp.Distance([]int64{0, 1, 2, 3}, []int64{2, 3, 4, 5})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(d)
	// Output: 0.5
}

func ExampleNew() {
	e, err := ecdf.New([]float64{0.5, 2.5, 1.5, 3.5}, order.Float[float64]{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	v, _ := e.Value(2.0)
	median, _ := e.Percentile(50)
	fmt.Printf("F(2.0)=%.2f median=%.1f max=%.1f\n", v, median, e.Max())
	// Output: F(2.0)=0.50 median=1.5 max=3.5
}

func ExamplePercentile() {
	samples := []int64{7, 3, 9, 1, 5}

	p90, err := ecdf.Percentile(samples, 90, order.Natural[int64]{})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(p90, samples)
	// Output: 9 [7 3 9 1 5]
}
