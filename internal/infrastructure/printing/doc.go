// Package printing renders order packing slips.
//
// A slip is first rendered to HTML from an embedded html/template and then
// printed to PDF by a headless Chrome driven through chromedp. The Chrome
// allocator is created once and reused across requests; every render opens
// its own tab.
package printing
