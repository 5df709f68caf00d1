package scramble_test

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/aretw0/scramble"
)

// ExampleScrambler_SetText waits for a transition and prints the settled text.
func ExampleScrambler_SetText() {
	s, err := scramble.New(
		scramble.WithNames("Hello"),
		scramble.WithFrameRate(240),
		scramble.WithRandom(rand.New(rand.NewPCG(1, 1))),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer s.Stop()

	c, err := s.SetText(ctx, "World")
	if err != nil {
		log.Fatal(err)
	}
	if err := c.Wait(ctx); err != nil {
		log.Fatal(err)
	}

	snap, _ := s.Snapshot(ctx)
	fmt.Println(snap.Text)
	// Output: World
}
