package metadata

import (
	"time"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure
  - Transport or remote availability: timeouts, DNS, resets, 5xx.

# CausePolicyDisallow
  - The service refused us: 403/401, 429 rate limiting.

# CauseContentInvalid
  - Fetched but unusable: non-JSON bodies, documents missing required fields.

# CauseContentMissing
  - The resource does not exist: HTTP 404 upstream, or a dependent file
    absent from the working directory at assembly time.

# CauseStorageFailure
  - Persisting or reading local files failed.

# CauseInvariantViolation
  - A system-level invariant was violated, e.g. two units sharing an endpoint key.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseContentMissing
	CauseStorageFailure
	CauseInvariantViolation
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseContentMissing:
		return "content_missing"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	// ArtifactResource is a fetched upstream document in the working directory.
	ArtifactResource ArtifactKind = "resource"
	// ArtifactEndpoint is one assembled endpoint entry.
	ArtifactEndpoint ArtifactKind = "endpoint"
	// ArtifactOutput is the assembled output file.
	ArtifactOutput ArtifactKind = "output"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrHost        AttributeKey = "host"
	AttrPath        AttributeKey = "path"
	AttrField       AttributeKey = "field"
	AttrHTTPStatus  AttributeKey = "http_status"
	AttrWritePath   AttributeKey = "write_path"
	AttrResource    AttributeKey = "resource"
	AttrUnit        AttributeKey = "unit"
	AttrEndpoint    AttributeKey = "endpoint"
	AttrContentHash AttributeKey = "content_hash"
	AttrMessage     AttributeKey = "message"
)

/*
RunStats is the terminal summary of one run.
  - Derived by the caller after the pipeline finished
  - Recorded exactly once
  - Must not influence control flow
*/
type RunStats struct {
	Downloaded      int
	SkippedExisting int
	Failed          int
	Units           int
	Assembled       int
	SkippedUnits    int
	Collisions      int
	Duration        time.Duration
}
