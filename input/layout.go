package input

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/vkngwrapper/segsim/segment"
)

// Layout is the content of a layout file:
//
//	{"memory_size": 100, "seed": 7, "segments": [{"name": "A", "size": 40}]}
//
// seed is optional.
type Layout struct {
	MemorySize int
	Seed       int64
	Segments   []Request
}

// ReadLayout decodes and validates a layout file
func ReadLayout(data []byte) (Layout, error) {
	var layout Layout

	r := jreader.NewReader(data)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "memory_size":
			layout.MemorySize = r.Int()
		case "seed":
			layout.Seed = int64(r.Int())
		case "segments":
			for arr := r.Array(); arr.Next(); {
				layout.Segments = append(layout.Segments, readRequest(&r))
			}
		default:
			r.SkipValue()
		}
	}

	if err := r.Error(); err != nil {
		return Layout{}, errors.Wrap(err, "could not decode layout")
	}

	if err := segment.CheckMemorySize(layout.MemorySize); err != nil {
		return Layout{}, err
	}

	for index, request := range layout.Segments {
		if err := request.Validate(); err != nil {
			return Layout{}, errors.Wrapf(err, "segment %d", index)
		}
	}

	return layout, nil
}

func readRequest(r *jreader.Reader) Request {
	var request Request

	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "name":
			request.Name = r.String()
		case "size":
			request.Size = r.Int()
		default:
			r.SkipValue()
		}
	}

	return request
}
