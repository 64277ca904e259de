// Package runlock guards against two pinpoint runs at once with an advisory
// file lock under the state directory.
package runlock
