package layout_test

import (
	"fmt"

	"github.com/matzehuels/townsquare/pkg/layout"
	"github.com/matzehuels/townsquare/pkg/measure"
	"github.com/matzehuels/townsquare/pkg/seating"
)

func ExampleEngine_Compute() {
	eng := layout.New(layout.DefaultConfig())
	res, err := eng.Compute(layout.Input{
		Names:     []string{"Ada", "Brin", "Cato", "Dax", "Eve"},
		Viewport:  seating.Viewport{Width: 800, Height: 600, Margin: 150},
		TokenSize: 64,
	}, measure.NewHeuristic(measure.DefaultMetrics(), nil))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, s := range res.Slots {
		fmt.Printf("%d %-4s distance=%.1f %s z=%d\n", s.Index, s.Name, s.DistanceMultiplier, s.Anchor, s.Z)
	}
	fmt.Println("converged:", res.Optimizer.Converged)
	// Output:
	// 0 Ada  distance=1.0 below z=0
	// 1 Brin distance=0.9 below z=0
	// 2 Cato distance=1.0 below z=0
	// 3 Dax  distance=1.0 above z=0
	// 4 Eve  distance=0.9 above z=0
	// converged: true
}
