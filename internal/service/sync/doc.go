// Package sync implements the version-resolution and update protocol that
// keeps the ChromeDriver binary matched to the installed Chrome browser.
//
// The flow is strictly linear: probe the installed browser version, resolve
// its MAJOR.MINOR.BUILD prefix against the remote catalog, download the
// platform-specific archive, extract it and move the driver binary into the
// automation toolkit's directory. Every stage failure is terminal and maps
// 1:1 to a distinct process exit code.
package sync
