// Package e2e runs the full load, persist, reload and search cycle over a generated source tree.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
)

// SourceFile is one file of the generated corpus, relative to the corpus root.
type SourceFile struct {
	RelPath string
	Content string
}

// QueryTestCase names a query and the file that must rank first for it.
type QueryTestCase struct {
	Query       string
	Expected    string
	Description string
}

// Corpus holds the generated files and the queries run against them.
type Corpus struct {
	Files     []SourceFile
	TestCases []QueryTestCase
	Skipped   []SourceFile // files the loader must not ingest
}

var templates = []struct {
	dir, ext, body string
}{
	{"service", ".go", "package service\n\n// Handler%[1]d serves route %[1]d.\nfunc Handler%[1]d(w http.ResponseWriter, r *http.Request) {\n\tw.WriteHeader(%[2]d)\n}\n"},
	{"scripts", ".py", "def task_%[1]d(items):\n    return [i * %[2]d for i in items]\n"},
	{"web", ".ts", "export function render%[1]d(props: Props): string {\n  return `<div id=\"%[1]d\">${props.title}</div>`;\n}\n"},
	{"lib", ".rs", "pub fn checksum_%[1]d(data: &[u8]) -> u32 {\n    data.iter().fold(%[2]d, |acc, b| acc ^ (*b as u32))\n}\n"},
	{"docs", ".md", "# Module %[1]d\n\nRetries %[2]d times before giving up.\n"},
}

// BuildCorpus returns n files spread over several languages and one exact-content
// query per file.
func BuildCorpus(n int) *Corpus {
	c := &Corpus{}
	for i := 0; i < n; i++ {
		tpl := templates[i%len(templates)]
		f := SourceFile{
			RelPath: filepath.Join(tpl.dir, fmt.Sprintf("file_%03d%s", i, tpl.ext)),
			Content: fmt.Sprintf(tpl.body, i, 200+i),
		}
		c.Files = append(c.Files, f)
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:       f.Content,
			Expected:    f.RelPath,
			Description: f.RelPath,
		})
	}
	c.Skipped = []SourceFile{
		{RelPath: filepath.Join(".git", "HEAD.go"), Content: "ref: refs/heads/main"},
		{RelPath: filepath.Join("node_modules", "dep", "index.js"), Content: "module.exports = {}"},
		{RelPath: filepath.Join("assets", "logo.png"), Content: "\x89PNG\r\n\x1a\n\x00"},
		{RelPath: filepath.Join("build", "notes.txt"), Content: "not a source extension"},
	}
	return c
}

// Write materialises every corpus file, skipped ones included, under root.
func (c *Corpus) Write(root string) error {
	all := append(append([]SourceFile(nil), c.Files...), c.Skipped...)
	for _, f := range all {
		p := filepath.Join(root, f.RelPath)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(f.Content), 0644); err != nil {
			return err
		}
	}
	return nil
}
