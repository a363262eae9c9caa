// Package errors provides structured, actionable error messages for the
// gobarber command line and server.
//
// Each error has a code (e.g., "G010") registered with a category, a short
// message, a longer detail and a documentation link:
//
//	err := errors.New("G010").
//	    WithDetail("open gobarber.yaml: permission denied").
//	    WithSuggestion("Check the file permissions")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR G010: Failed to load configuration
//	//
//	//   open gobarber.yaml: permission denied
//	//
//	//   Hint: Check the file permissions
//
// Categories group codes by the layer that reports them: config, cli,
// server, api, session and upload.
package errors
