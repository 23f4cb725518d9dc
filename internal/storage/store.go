package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/walksim/internal/config"
	"github.com/san-kum/walksim/internal/dynamo"
	"github.com/san-kum/walksim/internal/sim"
	"github.com/san-kum/walksim/internal/walker"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	strikesFile  = "strikes.csv"
)

var (
	stateHeader  = []string{"time", "theta_st", "dtheta_st", "theta_sw", "dtheta_sw", "foot_x", "foot_y"}
	strikeHeader = []string{
		"index", "step", "time", "duration",
		"pre_theta_st", "pre_dtheta_st", "pre_theta_sw", "pre_dtheta_sw",
		"post_theta_st", "post_dtheta_st", "post_theta_sw", "post_dtheta_sw",
		"foot_x", "foot_y",
	}
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Params     map[string]float64 `json:"params"`
	X0         []float64          `json:"x0"`
	Dt         float64            `json:"dt"`
	MaxT       float64            `json:"max_t"`
	Downsample int                `json:"downsample"`
	Integrator string             `json:"integrator"`
	Policy     string             `json:"policy"`
	Outcome    string             `json:"outcome"`
	Steps      int                `json:"steps"`
	Samples    int                `json:"samples"`
	Strikes    int                `json:"strikes"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Trajectory is a stored state series with its foot positions.
type Trajectory struct {
	Times  []float64
	States []dynamo.State
	Feet   []walker.Point
}

// NewRunID returns a fresh run identifier, walker_ plus eight hex digits.
func NewRunID() string {
	return "walker_" + uuid.New().String()[:8]
}

// Save writes a run directory and returns the run ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := NewRunID()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Params:     cfg.WalkerParams().GetParams(),
		X0:         append([]float64(nil), cfg.X0...),
		Dt:         cfg.Dt,
		MaxT:       cfg.MaxT,
		Downsample: cfg.Downsample,
		Integrator: cfg.Integrator,
		Policy:     cfg.Policy,
		Outcome:    result.Outcome.String(),
		Steps:      result.StepsTaken,
		Samples:    result.Len(),
		Strikes:    len(result.Strikes),
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result); err != nil {
		return "", err
	}
	if err := writeStrikes(filepath.Join(runDir, strikesFile), result.Strikes); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeStates(path string, result *sim.Result) error {
	return writeCSV(path, stateHeader, func(w *csv.Writer) error {
		for i := range result.Times {
			row := make([]string, 0, len(stateHeader))
			row = append(row, formatFloat(result.Times[i]))
			for _, val := range result.States[i] {
				row = append(row, formatFloat(val))
			}
			row = append(row, formatFloat(result.Feet[i].X), formatFloat(result.Feet[i].Y))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeStrikes(path string, strikes []sim.StrikeEvent) error {
	return writeCSV(path, strikeHeader, func(w *csv.Writer) error {
		for _, ev := range strikes {
			row := []string{
				strconv.Itoa(ev.Index),
				strconv.Itoa(ev.Step),
				formatFloat(ev.Time),
				formatFloat(ev.Duration),
			}
			for _, val := range ev.PreImpact {
				row = append(row, formatFloat(val))
			}
			for _, val := range ev.PostImpact {
				row = append(row, formatFloat(val))
			}
			row = append(row, formatFloat(ev.Foot.X), formatFloat(ev.Foot.Y))
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns the stored runs, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string, columns int) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = columns

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
	}

	rows := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: %w", filepath.Base(path), i+1, err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *Store) LoadStates(runID string) (*Trajectory, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, statesFile), len(stateHeader))
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{
		Times:  make([]float64, 0, len(rows)),
		States: make([]dynamo.State, 0, len(rows)),
		Feet:   make([]walker.Point, 0, len(rows)),
	}
	for _, row := range rows {
		traj.Times = append(traj.Times, row[0])
		traj.States = append(traj.States, dynamo.State(row[1:5]))
		traj.Feet = append(traj.Feet, walker.Point{X: row[5], Y: row[6]})
	}
	return traj, nil
}

func (s *Store) LoadStrikes(runID string) ([]sim.StrikeEvent, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, strikesFile), len(strikeHeader))
	if err != nil {
		return nil, err
	}

	strikes := make([]sim.StrikeEvent, 0, len(rows))
	for _, row := range rows {
		strikes = append(strikes, sim.StrikeEvent{
			Index:      int(row[0]),
			Step:       int(row[1]),
			Time:       row[2],
			Duration:   row[3],
			PreImpact:  dynamo.State(row[4:8]),
			PostImpact: dynamo.State(row[8:12]),
			Foot:       walker.Point{X: row[12], Y: row[13]},
		})
	}
	return strikes, nil
}
