// Package doifetch resolves scholarly document identifiers (DOIs) to
// downloadable full-text documents. It discovers the right URL among several
// candidate strategies, spaces requests per host according to each host's
// robots.txt crawl delay, and tells genuine full text apart from look-alike
// HTML error pages served with a 200 status.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package doifetch
