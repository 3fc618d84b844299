// Package crawler extracts members from the roster page and their
// details from per-member pages.
//
// # Components
//
//   - Lister: fetches the roster page once and walks it region by region
//   - DetailExtractor: derives a member's canonical detail URL, fetches it
//     and parses email, group and district
//   - Site: the URLs and link patterns describing the target website
//
// # Roster layout
//
// The roster page is a flat list of siblings:
//
//	<h2>Region</h2>
//	<h4 class="departementTitre">Department</h4>
//	<div><ul><li><a href="/deputes/fiche/OMC_PA1">Name</a></li></ul></div>
//	<h4 class="departementTitre">...</h4>
//	<h2>Next region</h2>
//
// Lister recovers the grouping with a small state machine over the
// siblings of the matched region heading. Unknown nodes are skipped.
//
// # Degradation
//
// Neither extractor fails a run for one member. A missing field becomes a
// nil pointer in model.Record, an unreachable detail page leaves every
// optional field nil, and only an unreachable roster page is reported to
// the caller as an error.
package crawler
