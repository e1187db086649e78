package timeline

import "github.com/cockroachdb/errors"

var (
	// ErrEventBeforeCreate is returned when an event's effective date precedes
	// the subscription's active CREATE event
	ErrEventBeforeCreate = errors.New("event precedes subscription creation")

	// ErrEventAfterCancel is returned when a billing-relevant event is added
	// after the subscription's active CANCEL event
	ErrEventAfterCancel = errors.New("event follows subscription cancellation")

	// ErrCreateAlreadyExists is returned when a second CREATE would become active
	ErrCreateAlreadyExists = errors.New("subscription already has an active creation event")

	// ErrNoActiveCreate is returned when a non-CREATE event is added to a
	// timeline without an active CREATE event
	ErrNoActiveCreate = errors.New("subscription has no active creation event")

	// ErrAlreadyCancelled is returned when a second CANCEL would become active
	ErrAlreadyCancelled = errors.New("subscription is already cancelled")

	// ErrBaseNotActive is returned when an add-on is requested against a base
	// subscription that is cancelled or not yet started at the requested date
	ErrBaseNotActive = errors.New("base subscription is not active")

	// ErrAddOnNotAvailable is returned when the requested add-on is not in the
	// base product's available set
	ErrAddOnNotAvailable = errors.New("add-on is not available for the base product")

	// ErrAddOnAlreadyIncluded is returned when the requested add-on is already
	// bundled for free with the base product
	ErrAddOnAlreadyIncluded = errors.New("add-on is already included in the base product")
)
