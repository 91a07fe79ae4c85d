package extractor

import (
	"vidscraper/pkg/metadata"
)

// Status is the result class of a strategy attempt
type Status int

const (
	// StatusNotFound means the strategy ran but the source had no usable video
	StatusNotFound Status = iota
	// StatusFound carries metadata with a video URL
	StatusFound
	// StatusFailed is a transport failure; the next strategy still runs
	StatusFailed
	// StatusRejected stops the chain, e.g. when the post is not a video
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	case StatusRejected:
		return "rejected"
	default:
		return "not_found"
	}
}

// Outcome is what a strategy or technique reports
type Outcome struct {
	Status Status
	Meta   metadata.VideoMetadata
	Reason string
	Err    error
}

// Found reports a usable record
func Found(m metadata.VideoMetadata) Outcome {
	return Outcome{Status: StatusFound, Meta: m}
}

// NotFound reports that the source lacked the required fields
func NotFound(reason string) Outcome {
	return Outcome{Status: StatusNotFound, Reason: reason}
}

// Failed reports a transport error
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err, Reason: err.Error()}
}

// Rejected reports a terminal error that must not fall through to weaker strategies
func Rejected(err error) Outcome {
	return Outcome{Status: StatusRejected, Err: err, Reason: err.Error()}
}

// FoundIfVideo returns Found when m has a video URL and NotFound otherwise.
func FoundIfVideo(m metadata.VideoMetadata, reason string) Outcome {
	if m == nil || m.Base().VideoURL == "" {
		return NotFound(reason)
	}
	return Found(m)
}
