// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import "fmt"

// Reason classifies why a document yielded no data.
type Reason int

const (
	// ReasonMalformed means the document is not well-formed.
	ReasonMalformed Reason = iota
	// ReasonLooksLikeGPX means a KML parse found GPX elements instead.
	ReasonLooksLikeGPX
	// ReasonNetworkLink means the KML only references remote content.
	ReasonNetworkLink
	// ReasonNoCoordinates means KML structure exists but nothing usable.
	ReasonNoCoordinates
	// ReasonNoData means nothing recognizable was found.
	ReasonNoData
	// ReasonShape means the document parsed but has the wrong shape.
	ReasonShape
)

// ParseError reports a document that could not be turned into records.
type ParseError struct {
	Format string
	Reason Reason
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return e.Err }
