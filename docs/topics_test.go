package docs

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAll(t *testing.T) {
	topics, err := All()
	if err != nil {
		t.Fatalf("All() failed: %v", err)
	}
	var names []string
	for _, topic := range topics {
		names = append(names, topic.Name)
		if topic.Summary == "" {
			t.Errorf("topic %q is not listed in readme.md", topic.Name)
		}
		if topic.Title == topic.Name {
			t.Errorf("topic %q has no title", topic.Name)
		}
	}
	want := []string{"dates", "concepts", "storage", "calendar", "shortcuts"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("All() names mismatch (-want +got):\n%s", diff)
	}

	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != len(topics)+1 {
		t.Errorf("got %d pages for %d topics, every page but the readme must be a topic", len(files), len(topics))
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr error
	}{
		{"dates", "dates", nil},
		{"Fechas", "dates", nil},
		{"cal", "calendar", nil},
		{"atajos", "shortcuts", nil},
		{"datos", "storage", nil},
		{"s", "", ErrAmbiguousTopic},
		{"c", "", ErrAmbiguousTopic},
		{"cuentas", "", ErrUnknownTopic},
		{"", "", ErrUnknownTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lookup(tt.name)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup(%q) error = %v, want %v", tt.name, err, tt.wantErr)
			}
			if got.Name != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.name, got.Name, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	one, err := Render("fechas")
	if err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !strings.HasPrefix(one, "# Dates") {
		t.Errorf("Render(fechas) must start with its title, got %q", one[:20])
	}
	all, err := Render("*")
	if err != nil {
		t.Fatalf("Render(*) failed: %v", err)
	}
	for _, title := range []string{"# Dates", "# Concepts", "# Calendar"} {
		if !strings.Contains(all, title) {
			t.Errorf("Render(*) is missing %q", title)
		}
	}
	if strings.Contains(all, "fin topic <topic>") {
		t.Errorf("Render(*) must not include the readme")
	}
	if _, err := Render("readme", "nope"); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("Render(nope) error = %v, want ErrUnknownTopic", err)
	}
}

func TestIndex(t *testing.T) {
	got, err := Index()
	if err != nil {
		t.Fatalf("Index() failed: %v", err)
	}
	for _, want := range []string{"| `dates` | Dates | how to type dates on the command line |", "`shortcuts`"} {
		if !strings.Contains(got, want) {
			t.Errorf("Index() must contain %q, got:\n%s", want, got)
		}
	}
}

func TestExamples(t *testing.T) {
	source := []byte("# T\n\n```bash setup\nfin income -a 1\n```\n\n```go\nignored()\n```\n\n```bash check\ntrue\nfalse\n```\n")
	want := []Example{
		{Kind: Setup, Script: "fin income -a 1\n", Line: 3},
		{Kind: Check, Script: "true\nfalse\n", Line: 11},
	}
	if diff := cmp.Diff(want, Examples(source)); diff != "" {
		t.Errorf("Examples() mismatch (-want +got):\n%s", diff)
	}
}

// TestGuideExamples runs the shell examples of every page against a fresh fin
// binary, so the guide cannot drift from the commands.
func TestGuideExamples(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs fin")
	}
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	bin := buildFin(t)
	env := append(os.Environ(),
		fmt.Sprintf("PATH=%s%c%s", filepath.Dir(bin), os.PathListSeparator, os.Getenv("PATH")),
		"FIN_TESTING_NOW=2024-01-15 10:00:00",
		"FIN_PLAIN=1",
	)
	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			source, err := os.ReadFile(file)
			if err != nil {
				t.Fatal(err)
			}
			s := scenario{file: file, env: env, dir: t.TempDir()}
			for _, ex := range Examples(source) {
				s.run(t, ex)
			}
		})
	}
}

// buildFin compiles the fin command into a temporary directory.
func buildFin(t *testing.T) string {
	t.Helper()
	bin := filepath.Join(t.TempDir(), "fin")
	if out, err := exec.Command("go", "build", "-o", bin, "../fin/").CombinedOutput(); err != nil {
		t.Fatalf("failed to build fin: %v\n%s", err, out)
	}
	return bin
}

// scenario runs the examples of a page in order. A setup starts over in a new
// ledger directory, a console check compares the output of the last run.
type scenario struct {
	file    string
	env     []string
	dir     string
	lastRun string
}

func (s *scenario) run(t *testing.T, ex Example) {
	t.Helper()
	where := fmt.Sprintf("%s:%d", s.file, ex.Line)
	if ex.Kind == ConsoleCheck {
		got := strings.ReplaceAll(strings.TrimSpace(s.lastRun), "\t", "        ")
		if want := strings.TrimSpace(ex.Script); got != want {
			t.Errorf("%s: output mismatch:\ngot:\n%s\nwant:\n%s", where, got, want)
		}
		return
	}
	if ex.Kind == Setup {
		s.dir = t.TempDir()
	}
	cmd := exec.Command("bash", "-c", "set -e; "+ex.Script)
	cmd.Dir = s.dir
	cmd.Env = s.env
	out, err := cmd.CombinedOutput()
	if ex.Kind == Run {
		s.lastRun = string(out)
	}
	switch {
	case err == nil:
	case ex.Kind == Check:
		t.Errorf("%s: check failed: %v\n%s", where, err, out)
	default:
		t.Fatalf("%s: %s failed: %v\n%s", where, ex.Kind, err, out)
	}
}
