// Urlcat categorizes URLs with a plain-text rule language.
//
// A rule file groups named categories into segments. Every URL receives
// one category per segment, the first category whose rule matches, or
// "no_match":
//
//	[segment:type]
//	@search host *google.* path /search
//	@news   domain:i *news*
//
// Usage:
//
//	# Categorize the url column of a CSV file into result.csv
//	urlcat categorize visits.csv -f url -c categorization.txt
//
//	# Categorize single URLs
//	urlcat eval -c categorization.txt https://www.google.com/search?q=go
//
//	# Check a rule file
//	urlcat lint -c categorization.txt --strict
//
//	# Serve the HTTP API with hot reload
//	urlcat serve --config urlcat.yaml
package main

func main() {
	Execute()
}
