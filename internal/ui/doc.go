// Package ui provides semantic text formatting for tarvault's output.
//
// Each formatter names the kind of content it renders, so commands say
// ui.Key.Sprint(key) instead of picking colors.
//
//	ui.Key.Sprint("diary")                 // Logical keys
//	ui.Path.Sprint("~/.tarvault")          // File paths
//	ui.Flag.Sprint("-z")                   // CLI flags
//	ui.Success.Sprint("✓")                 // Success indicators
//	ui.Error.Sprint("✗")                   // Error indicators
//	ui.Info.Sprint("→")                    // Hints
//	ui.Muted.Sprint("compressed")          // Secondary detail
//
// Colors are dropped when NO_COLOR is set or the terminal cannot show
// them. Formatters whose meaning would be lost without color fall back to
// text decorations instead: Key gets 'quotes', Muted gets (parentheses).
package ui
