// Package dashdoc converts hierarchical, TOC-driven documentation sites into
// offline Dash docsets. It crawls a site's nested table-of-contents documents,
// fetches every page exactly once, rewrites the HTML for offline use, and
// packages the result together with a searchable index.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package dashdoc
