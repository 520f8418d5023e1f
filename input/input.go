// Package input turns human-provided text into validated segment requests for the allocation engine.
package input

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/segsim/segment"
)

// ErrMalformedSegment is returned when a segment description cannot be parsed
var ErrMalformedSegment = errors.New("malformed segment description")

// Request is a validated (name, size) pair, ready to be registered with an engine
type Request struct {
	Name string
	Size int
}

// Validate checks the request against the same rules the engine applies at registration
func (r Request) Validate() error {
	_, err := segment.New(r.Name, r.Size)
	return err
}

// ParseSegment parses a "name size" entry, such as "code 40". Fields are separated by whitespace.
func ParseSegment(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Request{}, errors.Wrapf(ErrMalformedSegment, "expected 'name size', got %q", line)
	}

	return newRequest(fields[0], fields[1])
}

// ParseSegmentList parses a comma-separated list of "name:size" entries, such as "A:40,B:30".
// Empty entries are ignored.
func ParseSegmentList(list string) ([]Request, error) {
	var requests []Request

	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		name, size, found := strings.Cut(entry, ":")
		if !found {
			return nil, errors.Wrapf(ErrMalformedSegment, "expected 'name:size', got %q", entry)
		}

		request, err := newRequest(strings.TrimSpace(name), strings.TrimSpace(size))
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, nil
}

// ParseMemorySize parses a positive address space size
func ParseMemorySize(text string) (int, error) {
	size, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, errors.Wrapf(segment.ErrInvalidMemorySize, "%q is not an integer", text)
	}

	return size, segment.CheckMemorySize(size)
}

func newRequest(name, sizeText string) (Request, error) {
	size, err := strconv.Atoi(sizeText)
	if err != nil {
		return Request{}, errors.Wrapf(ErrMalformedSegment, "size of segment %q is %q, not an integer", name, sizeText)
	}

	request := Request{Name: name, Size: size}
	if err := request.Validate(); err != nil {
		return Request{}, err
	}
	return request, nil
}
