package narrator

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/easeaico/classroom-pulse/internal/emotion"
	"github.com/easeaico/classroom-pulse/internal/metrics"
	"github.com/easeaico/classroom-pulse/internal/types"
)

const instructionTemplateText = `You are the voice of a live classroom dashboard for "{{.Course}}".
Give the instructor a natural, spoken report in exactly 2-3 sentences based on the live data below.
Mention how many students are online, the dominant mood, the engagement score and one or two
notable shares of the emotion distribution. Use the actual numbers; never describe what the page is for.

Live data:
- Students online: {{.Online}} of {{.Total}}
- Dominant mood: {{.Dominant}}
- Engagement: {{.Engagement}}%
{{- range .Shares}}
- {{.Label}}: {{.Percent}}%
{{- end}}
{{- if .Alerts}}
Recent alerts:
{{- range .Alerts}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Guidance}}
Hint for the instructor: {{.Guidance}}
{{- end}}

Return ONLY a JSON object of the form {"text": "<report>"} without markdown.`

var instructionTemplate = template.Must(template.New("report").Parse(instructionTemplateText))

type share struct {
	Label   string
	Percent int
}

type promptData struct {
	Course     string
	Online     int
	Total      int
	Dominant   string
	Engagement int
	Shares     []share
	Alerts     []string
	Guidance   string
}

const maxPromptAlerts = 3

func buildPromptData(course string, m types.ClassMetrics) promptData {
	dominant := metrics.Dominant(m)
	data := promptData{
		Course:     course,
		Online:     m.OnlineStudents,
		Total:      m.TotalStudents,
		Dominant:   emotion.Describe(dominant).Label,
		Engagement: m.OverallEngagement,
		Guidance:   emotion.Guidance(dominant),
	}
	for _, e := range types.AllEmotions() {
		data.Shares = append(data.Shares, share{
			Label:   emotion.Describe(e).Label,
			Percent: metrics.Percent(m.EmotionDistribution[e], m.OnlineStudents),
		})
	}
	for i, a := range m.Alerts {
		if i == maxPromptAlerts {
			break
		}
		data.Alerts = append(data.Alerts, a.Message)
	}
	return data
}

// BuildInstruction renders the system instruction for a class report.
func BuildInstruction(course string, m types.ClassMetrics) (string, error) {
	var buf bytes.Buffer
	if err := instructionTemplate.Execute(&buf, buildPromptData(course, m)); err != nil {
		return "", fmt.Errorf("failed to build report prompt: %w", err)
	}
	return buf.String(), nil
}
