package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. This includes file system operations like reading or
	// writing segment files, network operations when communicating with remote
	// systems, and device I/O when accessing storage hardware.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints. This maps
	// to HTTP 400-series errors and indicates problems with the request itself
	// rather than system failures.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These are the equivalent of HTTP 500 errors and
	// indicate bugs, assertion failures, or other programming errors that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes that occur in persistent storage systems. These codes
// represent problems that are specific to the storage layer of your key-value
// store, particularly focusing on segment file management and data persistence.
const (
	// ErrorCodeSegmentCorrupted indicates that a segment file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeHeaderReadFailure occurs when the system cannot read the header
	// portion of a segment file. Headers contain critical metadata about the
	// segment's structure, so header read failures prevent access to the
	// entire segment and all data it contains.
	ErrorCodeHeaderReadFailure ErrorCode = "HEADER_READ_FAILURE"

	// ErrorCodePayloadReadFailure indicates problems reading the actual data
	// content from segment files after successfully reading the header. This
	// represents a more localized failure compared to header problems, as the
	// segment structure is intact but specific data regions are inaccessible.
	ErrorCodePayloadReadFailure ErrorCode = "PAYLOAD_READ_FAILURE"

	// ErrorCodeRecoveryFailed indicates that the storage system's attempt to
	// recover from a previous failure was unsuccessful. This represents a
	// compound failure where both the original problem and the recovery
	// mechanism have failed, creating a more serious operational situation.
	ErrorCodeRecoveryFailed ErrorCode = "STORAGE_RECOVERY_FAILED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access a resource.
	// This is distinct from generic IO errors because it has a specific resolution path:
	// the user needs to adjust file/directory permissions or run with elevated privileges.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	// This requires specific handling like cleanup operations or alerting administrators.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	// This requires administrative intervention to remount the filesystem with write permissions.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)

// Index-specific error codes cover failures in the in-memory key/offset map:
// missing keys, inconsistencies between the index and what's actually on
// disk, and structural corruption of the index itself.
const (
	// ErrorCodeIndexKeyNotFound indicates a lookup for a key that has no
	// entry in the index, either because it was never set or because it
	// was removed.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexInvalidSegmentID indicates an index entry points at a
	// segment id that no longer exists on disk. This is always a bug, not
	// a user-facing condition: segments are only ever deleted by
	// compaction, which updates every index entry pointing at them first.
	ErrorCodeIndexInvalidSegmentID ErrorCode = "INDEX_INVALID_SEGMENT_ID"

	// ErrorCodeIndexTimestampExtraction indicates a segment filename could
	// not be parsed into its numeric id during startup discovery.
	ErrorCodeIndexTimestampExtraction ErrorCode = "INDEX_FILENAME_PARSE_FAILURE"

	// ErrorCodeIndexCorrupted indicates the in-memory index data structure
	// itself is in an inconsistent state, distinct from corruption of the
	// underlying log.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)

// Wire and record codec error codes cover malformed bytes encountered while
// decoding either the on-disk log or the client/server protocol.
const (
	// ErrorCodeCodec indicates a value read from the log or the wire could
	// not be decoded into the expected shape.
	ErrorCodeCodec ErrorCode = "CODEC_ERROR"

	// ErrorCodeProtocol indicates a client sent a request the protocol
	// layer could not interpret, independent of whether the bytes were
	// valid JSON.
	ErrorCodeProtocol ErrorCode = "PROTOCOL_ERROR"

	// ErrorCodeKeyNotFound indicates a Remove was issued for a key that does
	// not currently exist in the store. A Get on such a key reports it with
	// ok=false instead of an error.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"
)
