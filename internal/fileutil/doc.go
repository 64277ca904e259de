// Package fileutil holds small file helpers: verified copies and a rename that
// falls back to copying when source and target live on different devices.
package fileutil
