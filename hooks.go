package regioncache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// Another writer won the insert race for key/region on the given
	// attempt (1-based); the call will refetch and likely return the
	// winner's item.
	AddRaceLost(key, region string, attempt int)

	// A get-or-add call burned through every attempt without resolving.
	RetryExhausted(key, region string, attempts int)

	// An item factory returned nil for key/region.
	FactoryDeclined(key, region string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) AddRaceLost(string, string, int)    {}
func (NopHooks) RetryExhausted(string, string, int) {}
func (NopHooks) FactoryDeclined(string, string)     {}
