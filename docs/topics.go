// Package docs embeds the user guide shown by "fin topic" and read by the
// assistant.
//
// Every page is a markdown file. readme.md is the index: each "* name:
// summary" line announces a page. Fenced blocks tagged "bash setup", "bash
// run", "bash check" or "console check" are runnable examples.
package docs

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	md "github.com/nao1215/markdown"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

//go:embed *.md
var pages embed.FS

// Readme is the name of the index page.
const Readme = "readme"

var (
	ErrUnknownTopic   = errors.New("unknown topic")
	ErrAmbiguousTopic = errors.New("ambiguous topic")
)

// Topic is a page of the user guide.
type Topic struct {
	Name    string
	Title   string
	Summary string
	Aliases []string
}

// aliases are the spanish names a topic also answers to.
var aliases = map[string][]string{
	"calendar":  {"calendario"},
	"concepts":  {"conceptos"},
	"dates":     {"fechas"},
	"shortcuts": {"atajos"},
	"storage":   {"almacenamiento", "datos"},
}

var indexLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

func read(name string) ([]byte, error) {
	b, err := pages.ReadFile(name + ".md")
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownTopic, name)
	}
	return b, nil
}

// index returns the page names and summaries listed in the readme, in order.
func index() (names []string, summaries map[string]string, err error) {
	b, err := read(Readme)
	if err != nil {
		return nil, nil, err
	}
	summaries = make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		m := indexLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		names = append(names, name)
		summaries[name] = strings.TrimSpace(m[2])
	}
	return names, summaries, nil
}

// All returns the topics in readme order. Pages the readme does not list come
// last, by name, without a summary.
func All() ([]Topic, error) {
	names, summaries, err := index()
	if err != nil {
		return nil, err
	}
	listed := make(map[string]bool, len(names))
	for _, n := range names {
		listed[n] = true
	}
	files, err := fs.Glob(pages, "*.md")
	if err != nil {
		return nil, err
	}
	var unlisted []string
	for _, f := range files {
		n := strings.TrimSuffix(f, ".md")
		if n != Readme && !listed[n] {
			unlisted = append(unlisted, n)
		}
	}
	sort.Strings(unlisted)

	var topics []Topic
	for _, n := range append(names, unlisted...) {
		b, err := read(n)
		if err != nil {
			return nil, err
		}
		topics = append(topics, Topic{
			Name:    n,
			Title:   title(b, n),
			Summary: summaries[n],
			Aliases: aliases[n],
		})
	}
	return topics, nil
}

// Names returns the topic names and their aliases, for shell completion.
func Names() []string {
	topics, err := All()
	if err != nil {
		return nil
	}
	var names []string
	for _, t := range topics {
		names = append(names, t.Name)
		names = append(names, t.Aliases...)
	}
	return names
}

// Lookup finds a topic by name, by alias or by a prefix shared with no other
// topic.
func Lookup(name string) (Topic, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	topics, err := All()
	if err != nil {
		return Topic{}, err
	}
	var matches []Topic
	for _, t := range topics {
		keys := append([]string{t.Name}, t.Aliases...)
		for _, k := range keys {
			if k == name {
				return t, nil
			}
		}
		for _, k := range keys {
			if name != "" && strings.HasPrefix(k, name) {
				matches = append(matches, t)
				break
			}
		}
	}
	switch len(matches) {
	case 0:
		return Topic{}, fmt.Errorf("%w %q", ErrUnknownTopic, name)
	case 1:
		return matches[0], nil
	default:
		var names []string
		for _, t := range matches {
			names = append(names, t.Name)
		}
		return Topic{}, fmt.Errorf("%w %q: %s", ErrAmbiguousTopic, name, strings.Join(names, ", "))
	}
}

// Content returns the markdown of the topic.
func (t Topic) Content() (string, error) {
	b, err := read(t.Name)
	return string(b), err
}

// Render concatenates the pages of the named topics. "*" stands for every
// topic and "readme" for the index page.
func Render(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		var topics []Topic
		switch name {
		case "*":
			all, err := All()
			if err != nil {
				return "", err
			}
			topics = all
		case Readme:
			topics = []Topic{{Name: Readme}}
		default:
			t, err := Lookup(name)
			if err != nil {
				return "", err
			}
			topics = []Topic{t}
		}
		for _, t := range topics {
			content, err := t.Content()
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// Index renders the list of topics as a markdown table.
func Index() (string, error) {
	topics, err := All()
	if err != nil {
		return "", err
	}
	rows := make([][]string, 0, len(topics))
	for _, t := range topics {
		rows = append(rows, []string{md.Code(t.Name), t.Title, t.Summary})
	}
	var buf bytes.Buffer
	return md.NewMarkdown(&buf).
		H1("📚 Temas").
		PlainText("Lee un tema con `fin topic <tema>`.").
		Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
			Header:    []string{"Tema", "Título", "Resumen"},
			Rows:      rows,
		}).
		String(), nil
}

// Example is a runnable fenced block of a page.
type Example struct {
	// Kind is the block info string, like "bash setup".
	Kind   string
	Script string
	// Line is the line of the opening fence.
	Line int
}

// Example kinds.
const (
	Setup        = "bash setup"
	Run          = "bash run"
	Check        = "bash check"
	ConsoleCheck = "console check"
)

// Examples returns the runnable blocks of a markdown document.
func Examples(source []byte) []Example {
	var examples []Example
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(source))
		switch kind {
		case Setup, Run, Check, ConsoleCheck:
		default:
			return ast.WalkContinue, nil
		}
		var script strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			script.Write(line.Value(source))
		}
		examples = append(examples, Example{
			Kind:   kind,
			Script: script.String(),
			Line:   bytes.Count(source[:fcb.Info.Segment.Start], []byte("\n")) + 1,
		})
		return ast.WalkContinue, nil
	})
	return examples
}

// TopicExamples returns the runnable blocks of a topic.
func TopicExamples(name string) ([]Example, error) {
	t, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	b, err := read(t.Name)
	if err != nil {
		return nil, err
	}
	return Examples(b), nil
}

// title returns the first level one heading of a page, or def.
func title(source []byte, def string) string {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	found := def
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !entering || !ok || h.Level != 1 || h.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		line := h.Lines().At(0)
		found = strings.TrimSpace(string(line.Value(source)))
		return ast.WalkStop, nil
	})
	return found
}
