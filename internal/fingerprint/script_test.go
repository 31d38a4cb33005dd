// internal/fingerprint/script_test.go
package fingerprint

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript(t *testing.T) {
	p := NewWindows().ChromeVersion(131).CPUCores(12).MemoryGB(16).Build()
	script := p.Script()

	t.Run("should spoof the prototype level navigator getters", func(t *testing.T) {
		assert.Contains(t, script, "navProto, 'platform'")
		assert.Contains(t, script, "'Win32'")
		assert.Contains(t, script, "=> 12")
		assert.Contains(t, script, "=> 16")
	})

	t.Run("should spoof both webgl parameter probes", func(t *testing.T) {
		assert.Contains(t, script, "37445")
		assert.Contains(t, script, "37446")
		assert.Contains(t, script, p.Vendor())
		assert.Contains(t, script, p.Renderer())
	})

	t.Run("should advertise the configured chrome version in the brand list", func(t *testing.T) {
		assert.Contains(t, script, `{ brand: "Google Chrome", version: "131" }`)
		assert.Contains(t, script, `{ brand: "Chromium", version: "131" }`)
	})

	t.Run("should pin webdriver to false", func(t *testing.T) {
		assert.Contains(t, script, "'webdriver'")
		assert.Contains(t, script, "get: () => false")
	})

	t.Run("should scrub automation markers", func(t *testing.T) {
		assert.Contains(t, script, "cdc_")
		assert.Contains(t, script, "__selenium")
	})

	t.Run("should append the worker wrapper after the main script", func(t *testing.T) {
		idx := strings.Index(script, "const OriginalWorker = Worker;")
		require.Positive(t, idx)
		assert.Contains(t, script[idx:], "new Blob([injectedCode + code]")
	})

	t.Run("should embed the main script inside the wrapper literal", func(t *testing.T) {
		wrapper := script[strings.Index(script, "const OriginalWorker"):]
		// The worker gets the same spoofed values prefixed onto its source.
		assert.Contains(t, wrapper, "37445")
		assert.Contains(t, wrapper, p.Renderer())
	})

	t.Run("should derive every value from the same profile", func(t *testing.T) {
		other := NewLinux().Build()
		assert.NotEqual(t, script, other.Script())
		assert.Contains(t, other.Script(), "'Linux x86_64'")
	})
}

func TestEscapeTemplateLiteral(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"plain", "plain"},
		{"a`b", "a\\`b"},
		{`back\slash`, `back\\slash`},
		{"${expr}", `\${expr}`},
		{"`${x}`", "\\`\\${x}\\`"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.out, escapeTemplateLiteral(tc.in), fmt.Sprintf("input %q", tc.in))
	}
}
