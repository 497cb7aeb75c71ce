package channel

// General is the fixed-shape GENERAL metadata record attached to every
// channel and parameter view.
type General struct {
	// Channel is the channel or parameter name.
	Channel string
	// Units is the measurement unit ("-" when unknown).
	Units string
	// Description is the block's free-text description.
	Description string
	// Base names the independent variable: "Crank Angle" for
	// crank-angle-resolved channels, "Cycle" for cycle-resolved ones,
	// "" for parameters.
	Base string
	// RecordCount is the total flattened sample count; always 1 for
	// parameters.
	RecordCount int
	// Range is the formatted axis range, "" when no meaningful range exists.
	Range string
	// Test identifies the originating measurement file, "" when unknown.
	Test string
}
