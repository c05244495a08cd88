package register

import (
	"bytes"
	"html/template"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// defaultTerms is served when no terms file is configured or readable.
const defaultTerms = `# Terms of Use

By using KAIZ Bot you agree that:

1. Conversations are processed by third-party AI providers.
2. Downloaded media is for personal use only.
3. The service is provided as-is, without warranty.
4. Session data is kept in memory and lost when the bot restarts.
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>KAIZ Bot Registration</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 680px; margin: 2rem auto; padding: 0 1rem; color: #1c1e21; }
.terms { border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.5rem; max-height: 50vh; overflow-y: auto; background: #fafafa; }
form { margin-top: 1.5rem; display: flex; gap: .5rem; }
input[type=text] { flex: 1; padding: .6rem; border: 1px solid #ccc; border-radius: 6px; font-size: 1rem; }
button { padding: .6rem 1.2rem; border: 0; border-radius: 6px; background: #0084ff; color: #fff; font-size: 1rem; cursor: pointer; }
.hint { color: #65676b; font-size: .9rem; }
</style>
</head>
<body>
<h1>Complete your registration</h1>
<p class="hint">Enter the reference code the bot sent you (it looks like <code>#user-ab12cd34-00042</code>).</p>
<div class="terms">{{ .Terms }}</div>
<form id="f">
<input type="text" name="reference_code" placeholder="#user-...-00000" required>
<button type="submit">Complete registration</button>
</form>
<p id="result" class="hint"></p>
<script>
document.getElementById('f').addEventListener('submit', async (e) => {
  e.preventDefault();
  const code = new FormData(e.target).get('reference_code').trim();
  const res = await fetch('/api/register/complete', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({reference_code: code})
  });
  const out = await res.json();
  document.getElementById('result').textContent = out.message || out.error || res.status;
});
</script>
</body>
</html>`

// renderPage converts the terms markdown to the registration HTML page.
func renderPage(termsPath string) ([]byte, error) {
	source := []byte(defaultTerms)
	if termsPath != "" {
		if content, err := os.ReadFile(termsPath); err == nil {
			source = content
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var rendered bytes.Buffer
	if err := md.Convert(source, &rendered); err != nil {
		return nil, err
	}

	tmpl, err := template.New("register").Parse(pageTemplate)
	if err != nil {
		return nil, err
	}

	var page bytes.Buffer
	err = tmpl.Execute(&page, struct{ Terms template.HTML }{
		Terms: template.HTML(rendered.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
