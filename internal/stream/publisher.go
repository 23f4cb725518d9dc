package stream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/san-kum/walksim/internal/sim"
)

// DefaultSubject carries samples; summaries go to DefaultSubject + ".summary".
const DefaultSubject = "walksim.samples"

// Conn is the publishing half of a NATS connection.
type Conn interface {
	Publish(subject string, data []byte) error
}

// SampleMessage is the JSON payload of one sample.
type SampleMessage struct {
	Run   string     `json:"run"`
	Step  int        `json:"step"`
	Time  float64    `json:"t"`
	State [4]float64 `json:"state"`
	FootX float64    `json:"foot_x"`
	FootY float64    `json:"foot_y"`
}

// SummaryMessage closes a published run.
type SummaryMessage struct {
	Run     string             `json:"run"`
	Outcome string             `json:"outcome"`
	Samples int                `json:"samples"`
	Strikes int                `json:"strikes"`
	Steps   int                `json:"steps"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type Publisher struct {
	conn    Conn
	subject string
	run     string
}

func NewPublisher(conn Conn, subject, run string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject, run: run}
}

func (p *Publisher) SummarySubject() string { return p.subject + ".summary" }

// Publish drains s, sending every sample as it is produced, then a
// summary. ctx must be the context s was created with; when it is
// canceled the summary still goes out with the partial outcome.
func (p *Publisher) Publish(ctx context.Context, s *sim.Stream) (*SummaryMessage, error) {
	sent := 0
	var pubErr error
	for sample := range s.All() {
		msg := SampleMessage{
			Run:   p.run,
			Step:  sample.Step,
			Time:  sample.Time,
			FootX: sample.Foot.X,
			FootY: sample.Foot.Y,
		}
		copy(msg.State[:], sample.State)

		data, err := json.Marshal(msg)
		if err != nil {
			pubErr = err
			break
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			pubErr = fmt.Errorf("stream: publish sample %d: %w", sample.Step, err)
			break
		}
		sent++
	}

	summary := &SummaryMessage{
		Run:     p.run,
		Outcome: s.Outcome().String(),
		Samples: sent,
		Strikes: len(s.Strikes()),
		Steps:   s.StepsTaken(),
		Metrics: s.Metrics(),
	}
	if err := s.Err(); err != nil {
		summary.Error = err.Error()
	}
	if pubErr != nil {
		return summary, pubErr
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return summary, err
	}
	if err := p.conn.Publish(p.SummarySubject(), data); err != nil {
		return summary, fmt.Errorf("stream: publish summary: %w", err)
	}
	return summary, ctx.Err()
}
