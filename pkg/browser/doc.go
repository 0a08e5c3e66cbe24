// Package browser renders a web page to its final HTML, including content
// that client-side code adds after the initial load.
//
// A Renderer owns nothing between calls: every Render launches an isolated
// browser through a Driver, navigates, waits for the page to settle, scrolls
// until the document height stops growing, captures the HTML and releases the
// browser on every exit path.
//
// # Convergence
//
// Lazy loading and infinite scroll add content only when the viewport
// reaches the bottom of the page. Converge repeatedly measures the scroll
// height, scrolls to the bottom, waits, and measures again. Two equal
// consecutive measurements end the loop. Pages whose height never settles
// (ad refresh loops, endless feeds) are cut off after
// Options.MaxScrollIterations rounds and returned as they are.
//
// # Drivers
//
//   - DriverPlaywright: Chromium through playwright-go (default)
//   - DriverRod: Chrome through go-rod with stealth evasions applied
//
// # Example Usage
//
//	target, err := browser.ValidateURL("https://example.com", nil)
//	if err != nil {
//	    return err // *types.ValidationError
//	}
//
//	renderer := browser.NewRenderer(browser.NewPlaywrightDriver(), browser.DefaultOptions())
//	snapshot, err := renderer.Render(ctx, target)
//	if err != nil {
//	    return err // *types.ExtractionFailure
//	}
package browser
