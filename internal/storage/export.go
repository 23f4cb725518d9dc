package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/walksim/internal/walker"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Times   []float64      `json:"times"`
	States  [][]float64    `json:"states"`
	Feet    []walker.Point `json:"feet"`
	Strikes []ExportStrike `json:"strikes"`
}

type ExportStrike struct {
	Index      int          `json:"index"`
	Time       float64      `json:"time"`
	Duration   float64      `json:"duration"`
	PostImpact []float64    `json:"post_impact"`
	Foot       walker.Point `json:"foot"`
}

// Export collects everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, err := s.LoadStates(runID)
	if err != nil {
		return nil, err
	}
	strikes, err := s.LoadStrikes(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:     *meta,
		Times:   traj.Times,
		States:  make([][]float64, len(traj.States)),
		Feet:    traj.Feet,
		Strikes: make([]ExportStrike, len(strikes)),
	}
	for i, st := range traj.States {
		data.States[i] = st
	}
	for i, ev := range strikes {
		data.Strikes[i] = ExportStrike{
			Index:      ev.Index,
			Time:       ev.Time,
			Duration:   ev.Duration,
			PostImpact: ev.PostImpact,
			Foot:       ev.Foot,
		}
	}
	return data, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
