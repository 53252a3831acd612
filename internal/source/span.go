package source

import (
	"fmt"
)

type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// NoSpan is used for diagnostics that have no source location.
var NoSpan = Span{File: NoFileID}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Valid() bool {
	return s.File != NoFileID
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	if !s.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if !s.Valid() {
		return other
	}
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
