package testkit

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
)

// PhDGeneratorConfig configures the synthetic doctorate dataset
type PhDGeneratorConfig struct {
	StartYear      int     `json:"start_year"`
	EndYear        int     `json:"end_year"`
	BaseRecipients float64 `json:"base_recipients"`
	GrowthRate     float64 `json:"growth_rate"`
	Noise          float64 `json:"noise"`
	Seed           int64   `json:"seed"`
	// OmitDecade drops the decade column so callers can exercise derivation.
	OmitDecade bool `json:"omit_decade"`
}

// DefaultPhDConfig mirrors the span of the published dataset
func DefaultPhDConfig() PhDGeneratorConfig {
	return PhDGeneratorConfig{
		StartYear:      1958,
		EndYear:        2017,
		BaseRecipients: 8773,
		GrowthRate:     0.035,
		Noise:          0.04,
		Seed:           42,
	}
}

// PhDRow is one generated row, kept so tests can compare parsed output
type PhDRow struct {
	Year       int
	Recipients int
	PctChange  float64
	HasChange  bool
	Decade     string
}

// PhDDataGenerator produces deterministic TSV fixtures shaped like
// cleaned_US_phds_awarded_by_year.tsv
type PhDDataGenerator struct {
	config PhDGeneratorConfig
	rng    *rand.Rand
}

// NewPhDDataGenerator creates a generator seeded from config
func NewPhDDataGenerator(config PhDGeneratorConfig) *PhDDataGenerator {
	return &PhDDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Rows generates one row per year in [StartYear, EndYear]
func (g *PhDDataGenerator) Rows() []PhDRow {
	var rows []PhDRow
	prev := 0
	for year := g.config.StartYear; year <= g.config.EndYear; year++ {
		n := year - g.config.StartYear
		trend := g.config.BaseRecipients * math.Pow(1+g.config.GrowthRate, float64(n))
		jitter := 1 + g.config.Noise*(2*g.rng.Float64()-1)
		count := int(math.Round(trend * jitter))

		row := PhDRow{
			Year:       year,
			Recipients: count,
			Decade:     fmt.Sprintf("%ds", year/10*10),
		}
		if prev > 0 {
			// One decimal place, as published.
			row.PctChange = math.Round(float64(count-prev)/float64(prev)*1000) / 10
			row.HasChange = true
		}
		rows = append(rows, row)
		prev = count
	}
	return rows
}

// TSV renders rows with the published header. The first row's % change is
// left blank, and counts use thousands separators.
func (g *PhDDataGenerator) TSV() []byte {
	return RenderTSV(g.Rows(), g.config.OmitDecade)
}

// RenderTSV writes rows in the dataset's tab-separated layout
func RenderTSV(rows []PhDRow, omitDecade bool) []byte {
	var buf bytes.Buffer
	buf.WriteString("Year\tDoctorate recipients\t% change from previous year")
	if !omitDecade {
		buf.WriteString("\tdecade")
	}
	buf.WriteString("\n")
	for _, r := range rows {
		change := ""
		if r.HasChange {
			change = fmt.Sprintf("%.1f", r.PctChange)
		}
		fmt.Fprintf(&buf, "%d\t%s\t%s", r.Year, withThousands(r.Recipients), change)
		if !omitDecade {
			fmt.Fprintf(&buf, "\t%s", r.Decade)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

func withThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
