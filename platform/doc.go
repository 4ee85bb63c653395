// Package platform describes the host agent runtimes a guard can be wired
// into and the per-user configuration directories each of them owns.
// Paths inside those directories are exempt from the working-directory
// restriction so an agent can still maintain its own settings, memory and
// plans while every other write stays inside the project.
package platform
