// Package rules is the entry point to the URL categorization rule language.
//
// A rule file groups categories into segments:
//
//	# traffic sources
//	[segment:search]
//	@organic protocol*https host*example.com path*/search*
//	@paid    or( query*gclid=* query*utm_medium=cpc* )
//
//	[segment:section]
//	@blog    path/blog*
//	@docs    host i:docs.* path rx:/v[0-9]+/
//
// Each match is <selector>[ not][ <modifier>:]<pattern> or and(...)/or(...) over
// matches. Selectors: hostname, host, domain, pathquery, path, query, protocol,
// proto, scheme, url. Modifiers: i (case-insensitive), rx and rxi (regular
// expression anchored at the start). Without a regular expression modifier a
// leading or trailing '*' is a wildcard.
//
// Tokens are separated by whitespace where the next token would otherwise be
// swallowed by a pattern, so write "or( host*a path*b )" with a space before ')'.
//
// For every URL each segment reports the first category whose matches all hold,
// or "no_match".
//
// # Basic Usage
//
//	root, err := rules.Parse(text)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := rules.Evaluate(root, "https://example.com/search?q=1")
package rules
