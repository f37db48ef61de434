package slicefinder_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/slicefinder"
	"github.com/hupe1980/slicefinder/dataset"
)

// Example_find finds the slice containing the only record with an error.
func Example_find() {
	x := [][]int{
		{1, 1, 1}, {2, 1, 1}, {1, 2, 1}, {2, 2, 1},
		{1, 1, 2}, {2, 1, 2}, {1, 2, 2}, {2, 2, 2},
	}
	e := []float64{0, 0, 0, 0, 0, 100, 0, 0}

	ds, err := dataset.FromSlices(x, e)
	if err != nil {
		log.Fatal(err)
	}

	res, err := slicefinder.Find(context.Background(), ds,
		slicefinder.WithK(1),
		slicefinder.WithMinSupport(1),
		slicefinder.WithAlpha(0.95),
	)
	if err != nil {
		log.Fatal(err)
	}

	for i, s := range res.TopK {
		fmt.Printf("%v size=%d score=%.2f\n", s, res.Stats[i].Size, res.Stats[i].Score)
	}
	// Output: [2 1 2] size=1 score=6.30
}
