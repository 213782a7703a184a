package charts

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"phddash/domain/dataset"
)

// DecadeSummary holds the five-number summary behind one box, with Tukey
// whiskers at 1.5 IQR.
type DecadeSummary struct {
	Decade       string    `json:"decade"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers,omitempty"`
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"std_dev"`
}

// Summarize computes one summary per decade that has at least one percent
// change value, in decade order of appearance.
func Summarize(t *dataset.Table) ([]DecadeSummary, error) {
	var summaries []DecadeSummary
	for _, decade := range t.Decades() {
		values := pctChanges(t, decade)
		if len(values) == 0 {
			continue
		}
		summary, err := summarize(decade, values)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func summarize(decade string, values []float64) (DecadeSummary, error) {
	data := stats.Float64Data(values)
	s := DecadeSummary{Decade: decade, Count: len(values)}

	var err error
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if len(values) < 2 {
		// Quartile needs a value on each side of the median.
		s.Q1, s.Q3 = s.Median, s.Median
	} else {
		q, err := stats.Quartile(data)
		if err != nil {
			return s, err
		}
		s.Q1, s.Q3 = q.Q1, q.Q3
	}

	iqr := s.Q3 - s.Q1
	lowFence, highFence := s.Q1-1.5*iqr, s.Q3+1.5*iqr
	s.LowerWhisker, s.UpperWhisker = s.Max, s.Min
	for _, v := range values {
		if v < lowFence || v > highFence {
			s.Outliers = append(s.Outliers, v)
			continue
		}
		if v < s.LowerWhisker {
			s.LowerWhisker = v
		}
		if v > s.UpperWhisker {
			s.UpperWhisker = v
		}
	}

	if len(values) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	} else {
		s.Mean = values[0]
	}
	return s, nil
}
