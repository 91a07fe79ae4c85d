// Package ui holds the terminal output helpers of the command line tool:
// colored print functions, a batch progress line and desktop
// notifications.
package ui
