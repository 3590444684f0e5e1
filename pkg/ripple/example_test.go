package ripple_test

import (
	"fmt"

	"github.com/go-drift/ripple/pkg/ripple"
	"github.com/go-drift/ripple/pkg/scope"
)

// This example publishes a theme change to two consumer roots and waits for
// both to acknowledge before the completion callback runs.
func ExampleContext_Publish() {
	registry := ripple.NewRegistry()

	left := scope.New()
	right := scope.New()
	registry.Mount(left)
	registry.Mount(right)

	theme := ripple.NewContext(registry, "light", nil)

	left.Subscribe(ripple.FullChange, func(ripple.Bits) {
		fmt.Println("left root saw the change")
	})
	right.Subscribe(ripple.FullChange, func(ripple.Bits) {
		fmt.Println("right root saw the change")
	})

	theme.Publish("dark", func(v string) {
		fmt.Printf("committed: %s\n", v)
	})

	fmt.Println(theme.Value(ripple.Primary))

	// Output:
	// left root saw the change
	// right root saw the change
	// committed: dark
	// dark
}

// This example shows change-bits filtering: only dependents whose interest
// mask intersects the detector's output are notified.
func ExampleChangeDetector() {
	type Theme struct {
		Color string
		Scale float64
	}
	const (
		colorChanged ripple.Bits = 1 << iota
		scaleChanged
	)

	registry := ripple.NewRegistry()
	root := scope.New()
	registry.Mount(root)

	theme := ripple.NewContext(registry, Theme{Color: "red", Scale: 1}, func(oldValue, newValue Theme) ripple.Bits {
		var bits ripple.Bits
		if oldValue.Color != newValue.Color {
			bits |= colorChanged
		}
		if oldValue.Scale != newValue.Scale {
			bits |= scaleChanged
		}
		return bits
	})

	root.Subscribe(colorChanged, func(ripple.Bits) {
		fmt.Println("color dependent notified")
	})
	root.Subscribe(scaleChanged, func(ripple.Bits) {
		fmt.Println("scale dependent notified")
	})

	theme.Publish(Theme{Color: "blue", Scale: 1}, nil)

	// Output:
	// color dependent notified
}
