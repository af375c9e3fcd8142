// device_disk.go - reserved disk controller stub
//
// Grounded on original_source/src/device/disk.rs: a reserved MMIO range
// that exists so guest probes do not fault, with no backing storage.
// spec.md §6 marks this range "reserved"; no SPEC_FULL component needs
// a real block device, so it stays a stub.

package main

// Disk answers reads with zero and discards writes, matching spec.md's
// "reserved" designation for 0xA0000300.
type Disk struct{}

func NewDisk() *Disk { return &Disk{} }

func (d *Disk) Read(addr, length uint32) uint32    { return 0 }
func (d *Disk) Write(addr, length, data uint32) {}
