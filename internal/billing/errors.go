package billing

import "fmt"

// CardError is a provider rejection specific to the submitted card (declined,
// expired, bad CVC). Its Message is safe to show to the end user verbatim.
type CardError struct {
	Code    string
	Message string
}

func (e *CardError) Error() string {
	return fmt.Sprintf("card error %s: %s", e.Code, e.Message)
}

// APIError is any other provider-side failure. Handlers surface it
// generically and log the detail.
type APIError struct {
	Status  int
	Type    string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error (%d %s): %s", e.Status, e.Type, e.Message)
}
