// Package ui provides terminal output for the leviosa CLI.
//
// Components follow a "run once and exit" pattern built on Lipgloss, with one
// Bubble Tea model for the discovery window:
//
//   - Result: success, failure and warning boxes with ordered details
//   - Printer: result boxes plus zone and group tables
//   - ScanModel: spinner, progress bar and zones heard so far while
//     discovery listens
//
// RunScan drives ScanModel when stdout is a terminal and prints plain lines
// otherwise, so output stays readable when piped.
//
// Example:
//
//	found, err := ui.RunScan(ctx, os.Stdout, 20*time.Second,
//	    func(ctx context.Context, onFound func(udn, ip string)) (map[string]string, error) {
//	        scanner := discovery.NewScanner()
//	        scanner.OnFound = onFound
//	        return scanner.Discover(ctx)
//	    })
//
// Logging is controlled separately via LEVIOSA_LOG_LEVEL and goes to
// stderr, so it never interleaves with this package's output.
package ui
