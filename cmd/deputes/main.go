// Package main provides the entry point for the deputes CLI.
//
// deputes extracts the members of the French Assemblée nationale, with
// their region, email address, political group and district, from the
// public roster and member pages.
//
// Usage:
//
//	deputes scrape
//	deputes scrape --region Bretagne --fields nom,email --table
//	deputes history --diff
//
// See --help for all available options.
package main

func main() {
	Execute()
}
