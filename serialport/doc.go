// Package serialport finds the USB serial port an EDL device is attached to.
package serialport
