// Command server runs the terminal session service: a session manager over
// native PTY (or pipe fallback) process backends, fronted by a REST surface
// and a websocket event stream for the UI shell.
package main
