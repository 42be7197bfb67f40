package services

import (
	"time"

	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// Buckets partitions contracts into the operator work queue views.
// A contract with an active lock counts as in progress whatever its status.
type Buckets struct {
	ToWork           []*models.Contract `json:"daLavorare"`
	InProgress       []*models.Contract `json:"inLavorazione"`
	NeedsIntegration []*models.Contract `json:"richiedonoIntegrazione"`
	Completed        []*models.Contract `json:"completati"`
}

// QueueStats summarises the buckets plus today's throughput.
type QueueStats struct {
	ToWork           int `json:"daLavorare"`
	InProgress       int `json:"inLavorazione"`
	NeedsIntegration int `json:"richiedonoIntegrazione"`
	Completed        int `json:"completati"`
	CompletedToday   int `json:"completatiOggi"`
	FinalizedToday   int `json:"finalizzatiOggi"`
}

// Partition assigns each contract to its buckets as of now.
func (m *LockManager) Partition(contracts []*models.Contract, now time.Time) Buckets {
	b := Buckets{
		ToWork:           []*models.Contract{},
		InProgress:       []*models.Contract{},
		NeedsIntegration: []*models.Contract{},
		Completed:        []*models.Contract{},
	}
	for _, c := range contracts {
		locked := m.IsLocked(c, now)
		switch c.Status {
		case models.StatusLoaded, models.StatusIntegration:
			if !locked {
				b.ToWork = append(b.ToWork, c)
			}
		case models.StatusDocumentsKO:
			b.NeedsIntegration = append(b.NeedsIntegration, c)
		case models.StatusDocumentsOK, models.StatusEntryOK, models.StatusPaid, models.StatusChargedBack:
			b.Completed = append(b.Completed, c)
		}
		if c.Status == models.StatusInProgress || locked {
			b.InProgress = append(b.InProgress, c)
		}
	}
	return b
}

// Stats counts bucket sizes and today's history entries. "Today" is the
// calendar date of now in now's location.
func Stats(b Buckets, contracts []*models.Contract, now time.Time) QueueStats {
	s := QueueStats{
		ToWork:           len(b.ToWork),
		InProgress:       len(b.InProgress),
		NeedsIntegration: len(b.NeedsIntegration),
		Completed:        len(b.Completed),
	}
	today := models.DateOf(now)
	for _, c := range contracts {
		for _, h := range c.History {
			if models.DateOf(h.ChangedAt.In(now.Location())) != today {
				continue
			}
			switch h.Status {
			case models.StatusDocumentsOK, models.StatusEntryOK:
				s.CompletedToday++
			case models.StatusPaid:
				s.FinalizedToday++
			}
		}
	}
	return s
}
