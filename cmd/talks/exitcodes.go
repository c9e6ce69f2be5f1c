package main

// Exit codes
const (
	ExitSuccess         = 0 // Success
	ExitError           = 1 // General error (invalid arguments, runtime failure, not found)
	ExitConfigError     = 2 // Configuration error (unreadable config, invalid backend)
	ExitDataError       = 3 // Data error (empty or duplicate title, malformed input)
	ExitConnectionError = 4 // Store unreachable at startup
)
