// Package types defines the core data types shared by the collector and
// the aggregator.
//
// Key types:
//   - Sample: A single timestamped measurement taken from an nmon record
//   - Payload: The tagged value of a sample (CPU, Scalar, Fields)
//   - Granularity: Bucket width used for re-sampling (none, 10m, h, d)
//   - Point: One reduced bucket, the final output handed to reporting
package types
