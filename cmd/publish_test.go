package cmd

import (
	"testing"
	"text/template"

	"github.com/etnz/fincal/date"
)

func TestRenderFrontMatter(t *testing.T) {
	january := date.MustParseMonth("2025-01")
	tests := []struct {
		name     string
		template string
		task     reportTask
		want     string
		wantErr  bool
	}{
		{
			name:     "basic template",
			template: "---\ntitle: {{.Report}} for {{.Month}}\n---",
			task:     reportTask{Report: "summary.md", Month: january},
			want:     "---\ntitle: summary.md for 2025-01\n---",
		},
		{
			name: "api",
			template: `
{{.Report}}: The report file.
{{.Month.Key}}: The month.
{{.Month.First}}: The first day of the month.
{{.Month.Last}}: The last day of the month.
{{.Month.Month}}: The month name.`,
			task: reportTask{Report: "month.md", Month: january},
			want: `
month.md: The report file.
2025-01: The month.
2025-01-01: The first day of the month.
2025-01-31: The last day of the month.
January: The month name.`,
		},
		{
			name:     "empty template",
			template: "",
			task:     reportTask{Report: "month.md", Month: january},
			want:     "",
		},
		{
			name:     "template with error",
			template: "{{.NonExistentField}}",
			task:     reportTask{Report: "month.md", Month: january},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl, err := template.New("test").Parse(tt.template)
			if err != nil {
				t.Fatalf("failed to parse template: %v", err)
			}

			got, err := renderFrontMatter(tpl, tt.task)
			if (err != nil) != tt.wantErr {
				t.Errorf("renderFrontMatter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("renderFrontMatter() got = %v, want %v", got, tt.want)
			}
		})
	}
}
