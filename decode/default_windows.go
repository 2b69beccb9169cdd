//go:build windows

package decode

// Default is the decoder for the console code page of the build target.
var Default = GBK
