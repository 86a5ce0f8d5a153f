package engine_test

import (
	"fmt"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/rule"
)

func ExampleClassify() {
	v, _ := engine.Classify(rule.Classic(), 1_000_000_000)
	fmt.Println(v)
	// Output: buzz
}

func ExampleProduce() {
	seq, _ := engine.Produce(rule.Classic(), 200, 5)
	for v := range seq.All() {
		fmt.Println(v)
	}
	// Output:
	// fizz
	// 202
	// 203
	// fizz
	// buzz
}

func ExampleSequence_Skip() {
	rules, _ := rule.Classic().With(rule.MustDivisibleBy(7, "bazz"))
	seq, _ := engine.ProduceUnbounded(rules, 0)
	_ = seq.Skip(103)
	_ = seq.Take(2)
	for p, v := range seq.Indexed() {
		fmt.Println(p, v)
	}
	// Output:
	// 104 104
	// 105 fizzbuzzbazz
}
