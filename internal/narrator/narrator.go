// Package narrator turns class metrics into a short spoken report for the instructor.
package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/metrics"
	"github.com/easeaico/classroom-pulse/internal/types"
)

// ErrEmptyReport is returned when the model answers without report text.
var ErrEmptyReport = errors.New("empty report")

const (
	defaultRequest  = "How is the class doing right now?"
	maxReportTokens = 150
)

// Output is the structured answer expected from the model.
type Output struct {
	Text string `json:"text" jsonschema:"the spoken class report"`
}

// Reporter produces class reports, falling back to Summarize when no model is available.
type Reporter struct {
	model  model.LLM
	course string
	logger *slog.Logger
	schema *jsonschema.Schema
}

// NewReporter returns a Reporter. A nil model always yields the local summary.
func NewReporter(m model.LLM, course string, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := jsonschema.For[Output](nil)
	if err != nil {
		logger.Warn("failed to derive report schema, using plain json mode", "error", err)
		schema = nil
	} else {
		schema.Title = "class_report"
	}
	return &Reporter{model: m, course: course, logger: logger, schema: schema}
}

// Report answers request about the class described by m. Model failures are logged and
// replaced by the local summary, so the returned error is always nil when the summary is usable.
func (r *Reporter) Report(ctx context.Context, m types.ClassMetrics, request string) (string, error) {
	if r == nil || r.model == nil {
		return Summarize(m), nil
	}
	text, err := r.generate(ctx, m, request)
	if err != nil {
		r.logger.Warn("class report generation failed, using local summary", "model", r.model.Name(), "error", err)
		return Summarize(m), nil
	}
	return text, nil
}

func (r *Reporter) generate(ctx context.Context, m types.ClassMetrics, request string) (string, error) {
	instruction, err := BuildInstruction(r.course, m)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(request) == "" {
		request = defaultRequest
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, "system"),
		Temperature:       genai.Ptr[float32](0.5),
		MaxOutputTokens:   maxReportTokens,
		ResponseMIMEType:  "application/json",
	}
	if r.schema != nil {
		cfg.ResponseJsonSchema = r.schema
	}
	req := &model.LLMRequest{
		Contents: []*genai.Content{genai.NewContentFromText(request, "user")},
		Config:   cfg,
	}

	var resp *model.LLMResponse
	for res, genErr := range r.model.GenerateContent(ctx, req, false) {
		if genErr != nil {
			return "", fmt.Errorf("failed to generate report: %w", genErr)
		}
		resp = res
		if res != nil && !res.Partial {
			break
		}
	}
	return ParseOutput(extractText(resp))
}

func extractText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// ParseOutput extracts the report text from a model answer. Answers that are not JSON are used
// verbatim.
func ParseOutput(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", ErrEmptyReport
	}
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start < 0 || end <= start {
		return clean, nil
	}

	var out Output
	if err := json.Unmarshal([]byte(clean[start:end+1]), &out); err != nil {
		return clean, nil
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return "", ErrEmptyReport
	}
	return out.Text, nil
}

// Summarize builds a deterministic report from m without a model.
func Summarize(m types.ClassMetrics) string {
	if m.OnlineStudents == 0 {
		return fmt.Sprintf("No students are online right now out of %d enrolled.", m.TotalStudents)
	}

	dominant := emotion.Describe(metrics.Dominant(m)).Label
	level := "steady"
	switch {
	case m.OverallEngagement >= 70:
		level = "strong"
	case m.OverallEngagement < metrics.LowEngagementThreshold:
		level = "low"
	}

	type part struct {
		label string
		pct   int
	}
	var parts []part
	for _, e := range types.AllEmotions() {
		if n := m.EmotionDistribution[e]; n > 0 {
			parts = append(parts, part{
				label: strings.ToLower(emotion.Describe(e).Label),
				pct:   metrics.Percent(n, m.OnlineStudents),
			})
		}
	}
	sort.SliceStable(parts, func(i, j int) bool { return parts[i].pct > parts[j].pct })
	if len(parts) > 2 {
		parts = parts[:2]
	}
	shares := make([]string, len(parts))
	for i, p := range parts {
		shares[i] = fmt.Sprintf("%d percent feeling %s", p.pct, p.label)
	}

	return fmt.Sprintf("Right now, %d out of %d students are online with a dominant %s mood. "+
		"The class engagement is %s at %d percent, with %s.",
		m.OnlineStudents, m.TotalStudents, strings.ToLower(dominant),
		level, m.OverallEngagement, strings.Join(shares, " and "))
}
