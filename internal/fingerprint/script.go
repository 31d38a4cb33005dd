// internal/fingerprint/script.go
package fingerprint

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed bootstrap.js.tmpl
var bootstrapTmplText string

//go:embed worker.js.tmpl
var workerTmplText string

var (
	bootstrapTmpl = template.Must(template.New("bootstrap").Parse(bootstrapTmplText))
	workerTmpl    = template.Must(template.New("worker").Parse(workerTmplText))
)

type bootstrapData struct {
	Platform      string
	Cores         int
	Memory        int
	Vendor        string
	Renderer      string
	ChromeVersion int
	HintsPlatform string
}

type workerData struct {
	EscapedScript string
}

// Script renders the profile into the injectable stealth script. The result
// is a self-invoking script that is safe to evaluate more than once against
// the same document: every redefined property stays configurable and the
// chrome.* graph is only created when missing. It is meant to be registered
// to run on every new document before the document's own scripts.
//
// The main-thread script is wrapped a second time so any Worker the page
// constructs gets the identical script prefixed onto its own source,
// keeping main-thread and worker-thread fingerprints consistent.
func (p Profile) Script() string {
	var main strings.Builder
	err := bootstrapTmpl.Execute(&main, bootstrapData{
		Platform:      p.Platform(),
		Cores:         p.cpuCores,
		Memory:        p.memoryGB,
		Vendor:        p.Vendor(),
		Renderer:      p.Renderer(),
		ChromeVersion: p.chromeVersion,
		HintsPlatform: p.HintsPlatform(),
	})
	if err != nil {
		// Template and data are both fixed at compile time.
		panic(err)
	}

	var wrapper strings.Builder
	if err := workerTmpl.Execute(&wrapper, workerData{
		EscapedScript: escapeTemplateLiteral(main.String()),
	}); err != nil {
		panic(err)
	}

	return main.String() + wrapper.String()
}

// escapeTemplateLiteral makes a script safe to embed inside a JavaScript
// backtick template literal: backslashes, backticks and ${ interpolations
// must not be interpreted.
func escapeTemplateLiteral(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`${`, `\${`,
	)
	return r.Replace(s)
}
