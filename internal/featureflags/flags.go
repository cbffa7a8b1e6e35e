package featureflags

// Known flag names.
const (
	// FlagScraper gates the background scrape refresher.
	FlagScraper = "scraper"
	// FlagRegistration gates new account registration.
	FlagRegistration = "registration"
)
