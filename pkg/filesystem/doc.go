// Package filesystem provides implementations of the types.FS interface.
package filesystem
