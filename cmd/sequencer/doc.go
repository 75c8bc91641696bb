// Command sequencer edits artwork sequence projects from the terminal,
// exports composites and reports, and runs the sharing server.
package main
