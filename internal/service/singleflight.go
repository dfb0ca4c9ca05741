package service

import (
	"golang.org/x/sync/singleflight"
)

// sfGroup adapts x/sync singleflight to the narrow interface the cache
// uses, which also lets tests count in-flight coalescing.
type sfGroup struct {
	group singleflight.Group
}

func newSingleflight() flightGroup {
	return &sfGroup{}
}

func (s *sfGroup) Do(key string, fn func() (any, error)) (any, error) {
	v, err, _ := s.group.Do(key, fn)
	return v, err
}
