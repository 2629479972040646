// Package constants provides centralized domain-specific constants
// for the nmon report tool.
//
// This file consolidates the record-kind tags and magic strings of the
// nmon file format that are otherwise scattered across packages.
package constants

// =============================================================================
// Record Kinds
// =============================================================================

const (
	// TagHostInfo is the header section tag; sub-key "host" carries the hostname.
	TagHostInfo = "AAA"

	// TagMarker opens a sampling interval: ZZZZ,<ref>,<HH:MM:SS>,<date>.
	TagMarker = "ZZZZ"

	// TagConfigDump carries the output of configuration commands run at startup.
	TagConfigDump = "BBBP"

	// TagCPUAll is the host-wide CPU utilization record.
	TagCPUAll = "CPU_ALL"

	// TagDiskRead is the per-disk read throughput record (KB/s).
	TagDiskRead = "DISKREAD"

	// TagDiskWrite is the per-disk write throughput record (KB/s).
	TagDiskWrite = "DISKWRITE"
)

// DefaultSelectedTags are reported as full series when nothing else is configured.
var DefaultSelectedTags = []string{TagCPUAll}

// DefaultDiskTags are summed over multipath devices.
var DefaultDiskTags = []string{TagDiskRead, TagDiskWrite}

// =============================================================================
// Field Values
// =============================================================================

const (
	// HostInfoKeyHost is the AAA sub-key holding the hostname.
	HostInfoKeyHost = "host"

	// SampleRefPrefix starts every interval reference of a real sample.
	SampleRefPrefix = "T"

	// MultipathTool is the config dump path whose output lists dm devices.
	MultipathTool = "/sbin/multipath"

	// FieldDelimiter separates fields; quoting is not interpreted.
	FieldDelimiter = ","

	// FileExtension is the suffix of nmon capture files.
	FileExtension = ".nmon"
)

// =============================================================================
// Series Names
// =============================================================================

const (
	// SeriesCPU is the report name of the CPU_ALL series.
	SeriesCPU = "cpu"

	// SeriesDiskRead is the report name of the combined multipath read series.
	SeriesDiskRead = "disk_read"

	// SeriesDiskWrite is the report name of the combined multipath write series.
	SeriesDiskWrite = "disk_write"
)

// SeriesName maps a record tag to its report series name.
func SeriesName(tag string) string {
	switch tag {
	case TagCPUAll:
		return SeriesCPU
	case TagDiskRead:
		return SeriesDiskRead
	case TagDiskWrite:
		return SeriesDiskWrite
	default:
		return tag
	}
}
