package babytrack

import "time"

type options struct {
	baseURL  string
	email    string
	password string
	deviceID string
	timeout  time.Duration
	babies   []Baby
}

// Option configures a Client.
type Option func(*options)

// WithCredentials sets the account credentials and the device identifier
// this client reports to the service.
func WithCredentials(email, password, deviceID string) Option {
	return func(o *options) {
		o.email = email
		o.password = password
		o.deviceID = deviceID
	}
}

// WithBabies sets the babies events may be recorded for. With exactly one
// baby, Record calls may pass an empty baby name.
func WithBabies(babies ...Baby) Option {
	return func(o *options) {
		o.babies = babies
	}
}

// WithBaseURL overrides the service endpoint. Default is the production
// endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithTimeout bounds each HTTP call. Default: 15s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

func defaultOptions() options {
	return options{
		baseURL: "https://prodapp.babytrackers.com",
		timeout: 15 * time.Second,
	}
}
