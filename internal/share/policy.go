// Package share keeps the viewers and export results handed out by the
// transfer server. Entries are keyed by random UUIDs and evicted by an
// explicit Policy; viewer snapshots survive restarts on disk.
package share

import (
	"sort"
	"time"
)

// Policy bounds how long and how many entries of each kind are kept.
type Policy struct {
	// MaxAge removes entries created more than MaxAge ago. Zero keeps
	// entries forever.
	MaxAge time.Duration
	// MaxItems caps each kind separately. Zero means no cap.
	MaxItems int
}

// DefaultPolicy keeps entries for 30 days and at most 10000 of each kind.
func DefaultPolicy() Policy {
	return Policy{MaxAge: 30 * 24 * time.Hour, MaxItems: 10000}
}

type stamp struct {
	id      string
	created time.Time
}

// evictions returns the ids to drop from one collection: first everything
// past MaxAge, then the oldest survivors beyond MaxItems. Equal creation
// times are ordered by id.
func (p Policy) evictions(entries []stamp, now time.Time) (expired, evicted []string) {
	var keep []stamp
	for _, e := range entries {
		if p.MaxAge > 0 && now.Sub(e.created) > p.MaxAge {
			expired = append(expired, e.id)
			continue
		}
		keep = append(keep, e)
	}
	sort.Strings(expired)
	if p.MaxItems <= 0 || len(keep) <= p.MaxItems {
		return expired, nil
	}
	sort.Slice(keep, func(i, j int) bool {
		if keep[i].created.Equal(keep[j].created) {
			return keep[i].id < keep[j].id
		}
		return keep[i].created.Before(keep[j].created)
	})
	for _, e := range keep[:len(keep)-p.MaxItems] {
		evicted = append(evicted, e.id)
	}
	return expired, evicted
}
