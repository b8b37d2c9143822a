package meeting

import (
	"html/template"
	"strings"
	"time"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
)

var minutesTmpl = template.Must(template.New("minutes").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="generated-at">Generated {{.GeneratedAt}}</p>
<h2>Summary</h2>
{{if .Summary}}<p>{{.Summary}}</p>{{else}}<p><em>No summary available.</em></p>{{end}}
<h2>Decisions</h2>
{{if .Decisions}}<ul>
{{range .Decisions}}<li>{{.}}</li>
{{end}}</ul>{{else}}<p><em>No decisions were recorded.</em></p>{{end}}
<h2>Action Items</h2>
{{if .Tasks}}<ol>
{{range .Tasks}}<li><strong>{{.Name}}</strong> <span class="priority">[{{.Priority}}]</span>{{if .Assignee}} &mdash; {{.Assignee}}{{end}}{{if .Company}} ({{.Company}}){{end}}{{if .DueDate}}, due {{.DueDate}}{{end}}{{if .Description}}<br>{{.Description}}{{end}}</li>
{{end}}</ol>{{else}}<p><em>No action items were extracted.</em></p>{{end}}
</body>
</html>
`))

type minutesTask struct {
	Name        string
	Priority    string
	Assignee    string
	Company     string
	DueDate     string
	Description string
}

type minutesData struct {
	Title       string
	GeneratedAt string
	Summary     string
	Decisions   []string
	Tasks       []minutesTask
}

// RenderMinutes renders the meeting minutes HTML from the summary, the
// decisions text (one decision per line) and the resolved task set. The
// rendered action item list matches the committed tasks one for one.
func RenderMinutes(meeting *entities.Meeting, summary, decisionsText string, tasks []ResolvedTask) (string, error) {
	data := minutesData{
		Title:       "Meeting minutes: " + meeting.Title,
		GeneratedAt: time.Now().Format("January 2, 2006"),
		Summary:     strings.TrimSpace(summary),
	}

	for _, line := range strings.Split(decisionsText, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			data.Decisions = append(data.Decisions, line)
		}
	}

	for _, rt := range tasks {
		if strings.TrimSpace(rt.Source.Name) == "" {
			continue
		}
		item := minutesTask{
			Name:        strings.TrimSpace(rt.Source.Name),
			Priority:    string(rt.Priority),
			Assignee:    strings.TrimSpace(rt.Source.AssigneeEmail),
			Description: strings.TrimSpace(rt.Source.Description),
		}
		if name := strings.TrimSpace(rt.Source.CompanyName); name != "" {
			item.Company = name
		} else if slug := strings.TrimSpace(rt.Source.CompanySlug); slug != "" {
			item.Company = slug
		}
		if rt.DueDate != nil {
			item.DueDate = rt.DueDate.Format("2006-01-02")
		}
		data.Tasks = append(data.Tasks, item)
	}

	var b strings.Builder
	if err := minutesTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
