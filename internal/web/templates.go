// internal/web/templates.go

package web

import (
	"html/template"

	"github.com/mwiater/evalboard/internal/table"
)

var funcMap = template.FuncMap{
	"scoreClass":   scoreClass,
	"emptyMessage": func() string { return table.EmptyMessage },
	"expandHint":   func() string { return table.ExpandHint },
}

var pageTemplate = template.Must(template.New("dashboard").Funcs(funcMap).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Evaluation Dashboard</title>
    {{if .Busy}}<meta http-equiv="refresh" content="2">{{end}}
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        h1 { color: #333; }
        .card { background: white; padding: 16px 20px; margin-bottom: 20px; border-radius: 6px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); }
        .field { margin-bottom: 12px; }
        .field label { display: block; font-weight: bold; margin-bottom: 4px; }
        .field input, .field textarea { width: 100%; padding: 6px; box-sizing: border-box; }
        .field textarea { min-height: 120px; font-family: monospace; }
        .actions { display: flex; gap: 8px; flex-wrap: wrap; align-items: end; }
        .actions .field { width: 140px; margin-bottom: 0; }
        button { padding: 8px 14px; border: none; border-radius: 4px; background: #1f6feb; color: white; cursor: pointer; }
        button:disabled { background: #9aa5b1; cursor: not-allowed; }
        .notice { padding: 10px 14px; border-radius: 4px; margin-bottom: 20px; display: flex; justify-content: space-between; }
        .notice.info { background: #d4edda; color: #155724; }
        .notice.error { background: #f8d7da; color: #721c24; }
        .notice button { background: transparent; color: inherit; padding: 0 4px; }
        .upload-error { color: #c0392b; margin-top: 8px; }
        table { width: 100%; border-collapse: collapse; background: white; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; vertical-align: top; }
        th { background: #4CAF50; color: white; }
        td pre { white-space: pre-wrap; margin: 0; font-family: monospace; }
        td form { margin: 0; }
        .cell-toggle { background: none; color: inherit; padding: 0; text-align: left; width: 100%; }
        .hint { color: #1f6feb; font-size: 0.85em; }
        .pass { color: #155724; }
        .fail { color: #721c24; }
        .missing { color: #888; }
        .empty { text-align: center; color: #666; padding: 24px; }
    </style>
</head>
<body>
    <h1>Evaluation Dashboard</h1>

    {{with .Notice}}
    <div class="notice {{.Level}}" role="alert">
        <span>{{.Message}}</span>
        <form method="post" action="/notice/dismiss"><button type="submit" aria-label="Dismiss">&times;</button></form>
    </div>
    {{end}}

    <div class="card">
        <h2>Model Configuration</h2>
        <form id="config-form" method="post" action="/save">
            {{range .Fields}}
            <div class="field">
                <label for="{{.Name}}">{{.Label}}</label>
                <input id="{{.Name}}" name="{{.Name}}" type="{{.Type}}"{{if .Step}} step="{{.Step}}"{{end}} value="{{.Value}}">
            </div>
            {{end}}
            <div class="field">
                <label for="system_prompt">System Prompt</label>
                <textarea id="system_prompt" name="system_prompt">{{.SystemPrompt}}</textarea>
            </div>
            <div class="actions">
                <button type="submit" formaction="/save">Save Configuration</button>
                <button type="submit" formaction="/rerun"{{if .Busy}} disabled{{end}}>{{if .IsLoading}}Running...{{else}}Re-run Evaluations{{end}}</button>
                <div class="field">
                    <label for="num_tests">Number of Tests</label>
                    <input id="num_tests" name="num_tests" type="number" min="1" value="{{.Synthetic.NumTests}}">
                </div>
                <div class="field">
                    <label for="max_threads">Max Threads</label>
                    <input id="max_threads" name="max_threads" type="number" min="1" value="{{.Synthetic.MaxThreads}}">
                </div>
                <button type="submit" formaction="/generate"{{if .Busy}} disabled{{end}}>{{if .IsSyntheticLoading}}Generating...{{else}}Generate &amp; Run Synthetic Tests{{end}}</button>
            </div>
        </form>
    </div>

    <div class="card">
        <h2>Upload Run Report</h2>
        <form method="post" action="/upload" enctype="multipart/form-data">
            <input type="file" name="report" accept=".json">
            <button type="submit">Upload</button>
        </form>
        {{if .UploadError}}<div class="upload-error">{{.UploadError}}</div>{{end}}
    </div>

    <table>
        <thead>
            <tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr>
        </thead>
        <tbody>
        {{if .Table.Empty}}
            <tr><td class="empty" colspan="{{.Table.ColSpan}}">{{emptyMessage}}</td></tr>
        {{else}}
            {{$gen := .Table.Generation}}
            {{range .Table.Rows}}
            <tr>
                <td>{{.TestID}}</td>
                <td>{{.Type}}</td>
                <td><pre>{{.CustomerPrompt}}</pre></td>
                <td>
                {{if .Collapsible}}
                    <form method="post" action="/transcripts/{{$gen}}/{{.TestID}}/toggle">
                        <button type="submit" class="cell-toggle"><pre>{{.Transcript}}</pre>{{if .ShowHint}}<span class="hint">{{expandHint}}</span>{{end}}</button>
                    </form>
                {{else}}
                    <pre>{{.Transcript}}</pre>
                {{end}}
                </td>
                {{range .Scores}}<td class="{{scoreClass .}}">{{.Text}}</td>{{end}}
            </tr>
            {{end}}
        {{end}}
        </tbody>
    </table>

    <script>
        // Push every edit to the server as it happens, one post at a time.
        const configForm = document.getElementById('config-form');
        let configSeq = 0;
        let pending = Promise.resolve();
        configForm.addEventListener('input', function() {
            const body = new URLSearchParams(new FormData(configForm));
            body.set('seq', String(++configSeq));
            pending = pending.then(function() {
                return fetch('/config', {
                    method: 'POST',
                    headers: { 'X-Requested-With': 'fetch' },
                    body: body
                });
            }).catch(function() {});
        });
    </script>
</body>
</html>
`
