package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Browser session errors
	ErrSessionInit  = fmt.Errorf("browser session initialization failed")
	ErrLoginFailed  = fmt.Errorf("login failed")
	ErrNotReady     = fmt.Errorf("condition not met")
	ErrNoEmailField = fmt.Errorf("no email field found")

	// Task processing errors
	ErrTaskNotFound  = fmt.Errorf("task not found")
	ErrFieldMismatch = fmt.Errorf("field value mismatch after write")
	ErrNoJobRows     = fmt.Errorf("no job rows visible")

	// Input validation errors
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
