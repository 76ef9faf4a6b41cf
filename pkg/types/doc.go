// Package types defines the core types shared across partforge:
// the lifecycle Step ordering, the Part build unit, the FS filesystem
// abstraction and the Driver capability interface.
package types
