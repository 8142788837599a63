package cloudsync

import (
	"sort"

	"github.com/dmitrijs2005/alarmify/internal/client/models"
)

// MergeStats summarizes one merge for logging.
type MergeStats struct {
	LocalOnly  int
	RemoteOnly int
	LocalWins  int
	RemoteWins int
	// Dropped lists ids where both sides held an invalid record.
	Dropped []string
}

// Merge combines two divergent alarm sets into one, newest wins. It is a
// pure function with no I/O.
//
// An id present on only one side is kept as-is, which is how newly created
// alarms propagate. For an id on both sides the record with the strictly
// greater LastModified wins in full; no field-level merging, since a
// stitched time/day/playlist tuple could be semantically invalid. An exact
// timestamp tie goes to the local record, keeping the outcome stable. The
// winner is re-validated and an invalid winner falls back to the other
// side; when both sides are invalid the id is dropped and reported in the
// stats.
//
// The result is sorted by id so equal inputs produce byte-equal output.
func Merge(local, remote []models.Alarm) ([]models.Alarm, MergeStats) {
	var stats MergeStats

	localByID := make(map[string]models.Alarm, len(local))
	for _, a := range local {
		localByID[a.ID] = a
	}

	merged := make(map[string]models.Alarm, len(local)+len(remote))
	seen := make(map[string]bool, len(remote))

	for _, r := range remote {
		seen[r.ID] = true
		l, ok := localByID[r.ID]
		if !ok {
			merged[r.ID] = r.Clone()
			stats.RemoteOnly++
			continue
		}

		winner, loser := l, r
		remoteWon := r.LastModified.After(l.LastModified)
		if remoteWon {
			winner, loser = r, l
		}
		if winner.Validate() != nil {
			if loser.Validate() != nil {
				stats.Dropped = append(stats.Dropped, r.ID)
				continue
			}
			winner = loser
			remoteWon = !remoteWon
		}
		if remoteWon {
			stats.RemoteWins++
		} else {
			stats.LocalWins++
		}
		merged[winner.ID] = winner.Clone()
	}

	for _, l := range local {
		if seen[l.ID] {
			continue
		}
		merged[l.ID] = l.Clone()
		stats.LocalOnly++
	}

	out := make([]models.Alarm, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	sort.Strings(stats.Dropped)
	return out, stats
}
