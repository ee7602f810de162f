package moderation

import (
	"fmt"
	"strings"
	"time"
)

// Collection names one of the dashboard's independently loaded data sets.
type Collection string

const (
	CollectionStats   Collection = "stats"
	CollectionPending Collection = "pending"
	CollectionReports Collection = "reports"
)

// Collections lists every collection in display order.
var Collections = []Collection{CollectionStats, CollectionPending, CollectionReports}

// ParseCollection accepts a collection name. "all" returns every collection.
func ParseCollection(raw string) ([]Collection, error) {
	switch Collection(strings.ToLower(strings.TrimSpace(raw))) {
	case CollectionStats:
		return []Collection{CollectionStats}, nil
	case CollectionPending:
		return []Collection{CollectionPending}, nil
	case CollectionReports:
		return []Collection{CollectionReports}, nil
	case "all", "":
		return append([]Collection(nil), Collections...), nil
	default:
		return nil, fmt.Errorf("unknown collection %q", raw)
	}
}

type LoadStatus int

const (
	Unloaded LoadStatus = iota
	Loading
	Loaded
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unloaded"
	}
}

// LoadState tracks one collection. Err is set only when Status is Failed.
type LoadState struct {
	Status    LoadStatus
	Err       error
	UpdatedAt time.Time
}

func (s LoadState) Failed() bool  { return s.Status == Failed }
func (s LoadState) Loading() bool { return s.Status == Loading }
func (s LoadState) Loaded() bool  { return s.Status == Loaded }
