// Command inkwit is the command-line client for the drawing analysis
// daemon. It submits drawings, polls run progress, and renders results
// over the daemon's HTTP API.
package main
