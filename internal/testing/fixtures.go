package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// NmonFile builds the text of an nmon capture line by line.
//
//	f := nmontest.NewNmonFile("db01").
//	    Multipath("mpatha", "3600507", "dm-0").
//	    Headers("sda", "dm-0").
//	    Interval("T0001", "09:00:00", "15-JUN-2015", 10, 2, 1, []float64{5, 40}, []float64{1, 2})
type NmonFile struct {
	lines []string
	bbbp  int
}

// NewNmonFile starts a capture with the AAA header block of host.
// An empty host omits the AAA,host line.
func NewNmonFile(host string) *NmonFile {
	f := &NmonFile{}
	f.Line("AAA", "progname", "nmon")
	if host != "" {
		f.Line("AAA", "host", host)
	}
	f.Line("AAA", "interval", "300")
	return f
}

// Line appends a raw record.
func (f *NmonFile) Line(fields ...string) *NmonFile {
	f.lines = append(f.lines, strings.Join(fields, ","))
	return f
}

// Raw appends text verbatim.
func (f *NmonFile) Raw(text string) *NmonFile {
	f.lines = append(f.lines, text)
	return f
}

// Multipath appends a BBBP multipath -ll line naming dev. The payload is
// quoted the way nmon writes it, with an embedded comma.
func (f *NmonFile) Multipath(alias, wwid, dev string) *NmonFile {
	f.bbbp++
	payload := fmt.Sprintf("\"%s (%s) %s IBM,2145\"", alias, wwid, dev)
	return f.Line("BBBP", fmt.Sprintf("%03d", f.bbbp), "/sbin/multipath", payload)
}

// Headers appends the CPU_ALL, DISKREAD and DISKWRITE header records.
func (f *NmonFile) Headers(disks ...string) *NmonFile {
	f.Line("CPU_ALL", "CPU Total host", "User%", "Sys%", "Wait%", "Idle%", "Busy", "CPUs")
	f.Line(append([]string{"DISKREAD", "Disk Read KB/s host"}, disks...)...)
	f.Line(append([]string{"DISKWRITE", "Disk Write KB/s host"}, disks...)...)
	return f
}

// Marker appends a ZZZZ timestamp marker.
func (f *NmonFile) Marker(ref, clock, date string) *NmonFile {
	return f.Line("ZZZZ", ref, clock, date)
}

// CPU appends a CPU_ALL data record.
func (f *NmonFile) CPU(ref string, user, sys, wait float64) *NmonFile {
	idle := 100 - user - sys - wait
	return f.Line("CPU_ALL", ref, num(user), num(sys), num(wait), num(idle), "", "8")
}

// Disk appends a disk data record with one value per header disk.
func (f *NmonFile) Disk(tag, ref string, values ...float64) *NmonFile {
	fields := []string{tag, ref}
	for _, v := range values {
		fields = append(fields, num(v))
	}
	return f.Line(fields...)
}

// Interval appends a marker followed by CPU, DISKREAD and DISKWRITE data.
func (f *NmonFile) Interval(ref, clock, date string, user, sys, wait float64, read, write []float64) *NmonFile {
	f.Marker(ref, clock, date)
	f.CPU(ref, user, sys, wait)
	f.Disk("DISKREAD", ref, read...)
	f.Disk("DISKWRITE", ref, write...)
	return f
}

// String returns the capture text.
func (f *NmonFile) String() string {
	return strings.Join(f.lines, "\n") + "\n"
}

// Write stores the capture as dir/name and returns the path.
func (f *NmonFile) Write(tb testing.TB, dir, name string) string {
	tb.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		tb.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(f.String()), 0644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
